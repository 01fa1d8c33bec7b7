package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/orgdump/internal/execshell"
)

const (
	requiredValueMessageConstant                = "value required"
	executorNotConfiguredMessageConstant        = "git executor not configured"
	remoteURLFieldNameConstant                  = "remote url"
	destinationFieldNameConstant                = "destination"
	repositoryPathFieldNameConstant             = "repository path"
	branchFieldNameConstant                     = "branch"
	invalidInputTemplateConstant                = "%s: %s"
	gitCloneSubcommandConstant                  = "clone"
	gitCheckoutSubcommandConstant               = "checkout"
	gitPullSubcommandConstant                   = "pull"
	gitPullFastForwardFlagConstant              = "--ff-only"
	defaultRemoteNameConstant                   = "origin"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the git entry point of execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidInputError reports missing arguments.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// RepositoryManager runs clone, checkout, and pull through the git executable.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Clone creates a working copy of remoteURL at destination.
func (manager *RepositoryManager) Clone(executionContext context.Context, remoteURL string, destination string) error {
	if len(strings.TrimSpace(remoteURL)) == 0 {
		return InvalidInputError{FieldName: remoteURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(destination)) == 0 {
		return InvalidInputError{FieldName: destinationFieldNameConstant, Message: requiredValueMessageConstant}
	}

	return manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, remoteURL, destination},
	})
}

// Checkout switches the working copy at repositoryPath to branch.
func (manager *RepositoryManager) Checkout(executionContext context.Context, repositoryPath string, branch string) error {
	if validationError := validateRepositoryAndBranch(repositoryPath, branch); validationError != nil {
		return validationError
	}

	return manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, branch},
		WorkingDirectory: repositoryPath,
	})
}

// Pull fast-forwards branch from the origin remote.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string, branch string) error {
	if validationError := validateRepositoryAndBranch(repositoryPath, branch); validationError != nil {
		return validationError
	}

	return manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPullSubcommandConstant, gitPullFastForwardFlagConstant, defaultRemoteNameConstant, branch},
		WorkingDirectory: repositoryPath,
	})
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, details execshell.CommandDetails) error {
	if details.EnvironmentVariables == nil {
		details.EnvironmentVariables = map[string]string{}
	}
	details.EnvironmentVariables[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptEnvironmentDisableConstant
	_, executionError := manager.executor.ExecuteGit(executionContext, details)
	return executionError
}

func validateRepositoryAndBranch(repositoryPath string, branch string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
