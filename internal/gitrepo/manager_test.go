package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/orgdump/internal/execshell"
	"github.com/temirov/orgdump/internal/gitrepo"
)

const (
	testRemoteURLConstant      = "https://github.com/my-org/widgets.git"
	testRepositoryPathConstant = "/srv/repositories/widgets"
	testBranchConstant         = "develop"
)

type recordingGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	queuedErrors    []error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if len(executor.queuedErrors) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	nextError := executor.queuedErrors[0]
	executor.queuedErrors = executor.queuedErrors[1:]
	return execshell.ExecutionResult{}, nextError
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestRepositoryManagerCommands(testInstance *testing.T) {
	testCases := []struct {
		name                     string
		invoke                   func(manager *gitrepo.RepositoryManager) error
		expectedArguments        []string
		expectedWorkingDirectory string
	}{
		{
			name: "clone",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Clone(context.Background(), testRemoteURLConstant, testRepositoryPathConstant)
			},
			expectedArguments:        []string{"clone", testRemoteURLConstant, testRepositoryPathConstant},
			expectedWorkingDirectory: "",
		},
		{
			name: "checkout",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Checkout(context.Background(), testRepositoryPathConstant, testBranchConstant)
			},
			expectedArguments:        []string{"checkout", testBranchConstant},
			expectedWorkingDirectory: testRepositoryPathConstant,
		},
		{
			name: "pull",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Pull(context.Background(), testRepositoryPathConstant, testBranchConstant)
			},
			expectedArguments:        []string{"pull", "--ff-only", "origin", testBranchConstant},
			expectedWorkingDirectory: testRepositoryPathConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(manager))
			require.Len(testInstance, executor.recordedDetails, 1)
			recorded := executor.recordedDetails[0]
			require.Equal(testInstance, testCase.expectedArguments, recorded.Arguments)
			require.Equal(testInstance, testCase.expectedWorkingDirectory, recorded.WorkingDirectory)
			require.Equal(testInstance, "0", recorded.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
		})
	}
}

func TestRepositoryManagerPropagatesExecutorErrors(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "error: pathspec 'develop' did not match"},
	}
	executor := &recordingGitExecutor{queuedErrors: []error{failure}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	checkoutError := manager.Checkout(context.Background(), testRepositoryPathConstant, testBranchConstant)

	var commandFailure execshell.CommandFailedError
	require.True(testInstance, errors.As(checkoutError, &commandFailure))
	require.Equal(testInstance, 1, commandFailure.Result.ExitCode)
}

func TestRepositoryManagerValidatesInputs(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.Clone(context.Background(), "", testRepositoryPathConstant))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.Clone(context.Background(), testRemoteURLConstant, " "))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.Checkout(context.Background(), "", testBranchConstant))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.Pull(context.Background(), testRepositoryPathConstant, ""))
	require.Empty(testInstance, executor.recordedDetails)
}
