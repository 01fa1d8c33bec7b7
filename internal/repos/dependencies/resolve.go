package dependencies

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/execshell"
	"github.com/temirov/orgdump/internal/githubapi"
	"github.com/temirov/orgdump/internal/githubcli"
	"github.com/temirov/orgdump/internal/gitrepo"
	"github.com/temirov/orgdump/internal/gogitmirror"
	"github.com/temirov/orgdump/internal/repos/filesystem"
	"github.com/temirov/orgdump/internal/repos/shared"
)

const (
	unsupportedHostingBackendTemplateConstant = "no repository listing available for hosting backend %q"
	unsupportedVersionControlTemplateConstant = "no version control client available for backend %q"
)

// HostingSettings configure the hosting platform clients.
type HostingSettings struct {
	Backend    shared.HostingBackend
	Token      string
	APIBaseURL string
	HTTPClient *http.Client
}

// VersionControlSettings configure the working-copy backend.
type VersionControlSettings struct {
	Backend shared.VersionControlBackend
	Token   string
}

// HostingClient bundles listing and default branch resolution from one platform client.
type HostingClient interface {
	shared.RepositoryLister
	shared.DefaultBranchSource
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default.
func ResolveCommandExecutor(existing shared.CommandExecutor, logger *zap.Logger, observer execshell.CommandEventObserver, commandTimeout time.Duration) (shared.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	options := []execshell.ShellExecutorOption{execshell.WithCommandTimeout(commandTimeout)}
	if observer != nil {
		options = append(options, execshell.WithCommandEventObserver(observer))
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, options...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveHostingClient returns the provided client or builds one for the configured backend.
func ResolveHostingClient(existing HostingClient, settings HostingSettings, executor shared.CommandExecutor) (HostingClient, error) {
	if existing != nil {
		return existing, nil
	}

	switch settings.Backend {
	case shared.HostingBackendCLI, "":
		return githubcli.NewClient(executor)
	case shared.HostingBackendAPI:
		var options []githubapi.ClientOption
		if len(settings.APIBaseURL) > 0 {
			options = append(options, githubapi.WithBaseURL(settings.APIBaseURL))
		}
		return githubapi.NewClient(settings.HTTPClient, settings.Token, options...)
	default:
		return nil, fmt.Errorf(unsupportedHostingBackendTemplateConstant, settings.Backend)
	}
}

// ResolveVersionControlClient returns the provided client or builds one for the configured backend.
func ResolveVersionControlClient(existing shared.VersionControlClient, settings VersionControlSettings, executor shared.CommandExecutor) (shared.VersionControlClient, error) {
	if existing != nil {
		return existing, nil
	}

	switch settings.Backend {
	case shared.VersionControlBackendCLI, "":
		return gitrepo.NewRepositoryManager(executor)
	case shared.VersionControlBackendGoGit:
		return gogitmirror.NewClient(gogitmirror.WithAccessToken(settings.Token)), nil
	default:
		return nil, fmt.Errorf(unsupportedVersionControlTemplateConstant, settings.Backend)
	}
}
