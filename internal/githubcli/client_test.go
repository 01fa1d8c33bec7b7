package githubcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/orgdump/internal/execshell"
	"github.com/temirov/orgdump/internal/githubcli"
)

const (
	testRepositoryConstant   = "my-org/example"
	testOrganizationConstant = "my-org"
)

type stubGitHubExecutor struct {
	standardOutput  string
	executionError  error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, nil
}

func TestNewClientRequiresExecutor(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(nil)
	require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
	require.Nil(testInstance, client)
}

func TestResolveDefaultBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		repository     string
		executor       *stubGitHubExecutor
		expectedBranch string
		expectedError  error
		expectOpError  bool
	}{
		{
			name:           "branch_reported",
			repository:     " " + testRepositoryConstant + " ",
			executor:       &stubGitHubExecutor{standardOutput: `{"defaultBranchRef":{"name":"trunk"}}`},
			expectedBranch: "trunk",
		},
		{
			name:       "empty_repository",
			repository: testRepositoryConstant,
			executor:   &stubGitHubExecutor{standardOutput: `{"defaultBranchRef":null}`},
		},
		{
			name:          "garbled_output",
			repository:    testRepositoryConstant,
			executor:      &stubGitHubExecutor{standardOutput: "not json"},
			expectOpError: true,
		},
		{
			name:          "gh_failure",
			repository:    testRepositoryConstant,
			executor:      &stubGitHubExecutor{executionError: errors.New("HTTP 404")},
			expectOpError: true,
		},
		{
			name:          "blank_repository",
			repository:    "  ",
			executor:      &stubGitHubExecutor{},
			expectedError: githubcli.ErrRepositoryRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			branch, resolveError := client.ResolveDefaultBranch(context.Background(), testCase.repository)
			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				require.Empty(testInstance, testCase.executor.recordedDetails)
			case testCase.expectOpError:
				var operationError githubcli.OperationError
				require.ErrorAs(testInstance, resolveError, &operationError)
				require.Equal(testInstance, githubcli.Operation("repo view"), operationError.Operation)
				require.Equal(testInstance, testRepositoryConstant, operationError.Subject)
			default:
				require.NoError(testInstance, resolveError)
				require.Equal(testInstance, testCase.expectedBranch, branch)
				require.Equal(testInstance, []string{"repo", "view", testRepositoryConstant, "--json", "defaultBranchRef"}, testCase.executor.recordedDetails[0].Arguments)
			}
		})
	}
}

func TestListRepositories(testInstance *testing.T) {
	testCases := []struct {
		name          string
		owner         string
		limit         int
		executor      *stubGitHubExecutor
		expectedLines []string
		expectedArgs  []string
		expectedError error
		expectOpError bool
	}{
		{
			name:          "lines_trimmed_of_blank_and_carriage_returns",
			owner:         testOrganizationConstant,
			limit:         25,
			executor:      &stubGitHubExecutor{standardOutput: "my-org/a\tFirst\tpublic\t2024-01-01\n\nmy-org/b\t\tprivate\t2024-01-02\r\n"},
			expectedLines: []string{"my-org/a\tFirst\tpublic\t2024-01-01", "my-org/b\t\tprivate\t2024-01-02"},
			expectedArgs:  []string{"repo", "list", testOrganizationConstant, "--limit", "25"},
		},
		{
			name:         "default_limit",
			owner:        testOrganizationConstant,
			executor:     &stubGitHubExecutor{},
			expectedArgs: []string{"repo", "list", testOrganizationConstant, "--limit", "1000"},
		},
		{
			name:          "gh_failure",
			owner:         testOrganizationConstant,
			executor:      &stubGitHubExecutor{executionError: errors.New("gh not installed")},
			expectOpError: true,
		},
		{
			name:          "blank_owner",
			executor:      &stubGitHubExecutor{},
			expectedError: githubcli.ErrOwnerRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			lines, listError := client.ListRepositories(context.Background(), testCase.owner, testCase.limit)
			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, listError, testCase.expectedError)
			case testCase.expectOpError:
				var operationError githubcli.OperationError
				require.ErrorAs(testInstance, listError, &operationError)
				require.ErrorContains(testInstance, listError, "gh repo list my-org: gh not installed")
			default:
				require.NoError(testInstance, listError)
				require.Equal(testInstance, testCase.expectedLines, lines)
				require.Len(testInstance, testCase.executor.recordedDetails, 1)
				require.Equal(testInstance, testCase.expectedArgs, testCase.executor.recordedDetails[0].Arguments)
			}
		})
	}
}
