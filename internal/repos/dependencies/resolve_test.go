package dependencies_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/githubapi"
	"github.com/temirov/orgdump/internal/githubcli"
	"github.com/temirov/orgdump/internal/gitrepo"
	"github.com/temirov/orgdump/internal/gogitmirror"
	"github.com/temirov/orgdump/internal/repos/dependencies"
	"github.com/temirov/orgdump/internal/repos/filesystem"
	"github.com/temirov/orgdump/internal/repos/shared"
)

func TestResolveFileSystemDefaultsToOS(t *testing.T) {
	require.IsType(t, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))
}

func TestResolveHostingClientSelectsBackend(t *testing.T) {
	executor, executorError := dependencies.ResolveCommandExecutor(nil, zap.NewNop(), nil, 0)
	require.NoError(t, executorError)

	cliClient, cliError := dependencies.ResolveHostingClient(nil, dependencies.HostingSettings{Backend: shared.HostingBackendCLI}, executor)
	require.NoError(t, cliError)
	require.IsType(t, &githubcli.Client{}, cliClient)

	apiClient, apiError := dependencies.ResolveHostingClient(nil, dependencies.HostingSettings{Backend: shared.HostingBackendAPI, Token: "token"}, executor)
	require.NoError(t, apiError)
	require.IsType(t, &githubapi.Client{}, apiClient)

	_, unknownError := dependencies.ResolveHostingClient(nil, dependencies.HostingSettings{Backend: shared.HostingBackend("gitea")}, executor)
	require.Error(t, unknownError)
}

func TestResolveVersionControlClientSelectsBackend(t *testing.T) {
	executor, executorError := dependencies.ResolveCommandExecutor(nil, zap.NewNop(), nil, 0)
	require.NoError(t, executorError)

	cliClient, cliError := dependencies.ResolveVersionControlClient(nil, dependencies.VersionControlSettings{Backend: shared.VersionControlBackendCLI}, executor)
	require.NoError(t, cliError)
	require.IsType(t, &gitrepo.RepositoryManager{}, cliClient)

	goGitClient, goGitError := dependencies.ResolveVersionControlClient(nil, dependencies.VersionControlSettings{Backend: shared.VersionControlBackendGoGit}, executor)
	require.NoError(t, goGitError)
	require.IsType(t, &gogitmirror.Client{}, goGitClient)

	_, unknownError := dependencies.ResolveVersionControlClient(nil, dependencies.VersionControlSettings{Backend: shared.VersionControlBackend("svn")}, executor)
	require.Error(t, unknownError)
}
