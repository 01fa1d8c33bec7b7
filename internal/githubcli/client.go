package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/orgdump/internal/execshell"
)

const (
	ownerRequiredMessageConstant         = "repository owner must be provided"
	repositoryRequiredMessageConstant    = "repository name must be provided"
	executorNotConfiguredMessageConstant = "github cli executor not configured"
	operationErrorTemplateConstant       = "gh %s %s: %v"
	decodingErrorTemplateConstant        = "unexpected gh output: %w"
	defaultListingLimitConstant          = 1000
	defaultBranchFieldConstant           = "defaultBranchRef"
	carriageReturnConstant               = "\r"
	newlineConstant                      = "\n"
	listOperationConstant                = Operation("repo list")
	viewOperationConstant                = Operation("repo view")
)

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrOwnerRequired indicates a blank owner was passed to ListRepositories.
	ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)
	// ErrRepositoryRequired indicates a blank repository was passed to ResolveDefaultBranch.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
)

// Operation names the gh subcommand that failed.
type Operation string

// OperationError reports a gh invocation that failed or returned unusable output.
type OperationError struct {
	Operation Operation
	Subject   string
	Cause     error
}

// Error describes the failed invocation.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Subject, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// GitHubCommandExecutor is the subset of execshell.ShellExecutor used by the client.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client answers repository listing and default branch queries through gh.
type Client struct {
	executor GitHubCommandExecutor
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ListRepositories runs "gh repo list <owner> --limit <n>" and returns the non-blank output lines.
// Each line starts with "owner/name" followed by tab-separated columns.
func (client *Client) ListRepositories(executionContext context.Context, owner string, limit int) ([]string, error) {
	ownerName := strings.TrimSpace(owner)
	if len(ownerName) == 0 {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = defaultListingLimitConstant
	}

	result, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{"repo", "list", ownerName, "--limit", strconv.Itoa(limit)},
	})
	if executionError != nil {
		return nil, OperationError{Operation: listOperationConstant, Subject: ownerName, Cause: executionError}
	}

	var lines []string
	for _, line := range strings.Split(result.StandardOutput, newlineConstant) {
		line = strings.TrimSuffix(line, carriageReturnConstant)
		if len(strings.TrimSpace(line)) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ResolveDefaultBranch runs "gh repo view <repository> --json defaultBranchRef".
// A repository without commits has no default branch and yields an empty string.
func (client *Client) ResolveDefaultBranch(executionContext context.Context, repository string) (string, error) {
	fullName := strings.TrimSpace(repository)
	if len(fullName) == 0 {
		return "", ErrRepositoryRequired
	}

	result, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{"repo", "view", fullName, "--json", defaultBranchFieldConstant},
	})
	if executionError != nil {
		return "", OperationError{Operation: viewOperationConstant, Subject: fullName, Cause: executionError}
	}

	var response struct {
		DefaultBranchRef *struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}
	if decodingError := json.Unmarshal([]byte(result.StandardOutput), &response); decodingError != nil {
		return "", OperationError{Operation: viewOperationConstant, Subject: fullName, Cause: fmt.Errorf(decodingErrorTemplateConstant, decodingError)}
	}
	if response.DefaultBranchRef == nil {
		return "", nil
	}
	return strings.TrimSpace(response.DefaultBranchRef.Name), nil
}
