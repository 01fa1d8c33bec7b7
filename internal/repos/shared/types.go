package shared

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/temirov/orgdump/internal/execshell"
)

const (
	unsupportedHostingBackendTemplateConstant = "unsupported hosting backend %q (expected cli or api)"
	unsupportedVersionControlTemplateConstant = "unsupported version control backend %q (expected cli or go-git)"
)

// HostingBackend selects how repositories are listed and default branches resolved.
type HostingBackend string

// Supported hosting backends.
const (
	HostingBackendCLI HostingBackend = "cli"
	HostingBackendAPI HostingBackend = "api"
)

// ParseHostingBackend normalizes a configured hosting backend. Empty selects the gh CLI.
func ParseHostingBackend(raw string) (HostingBackend, error) {
	switch HostingBackend(strings.ToLower(strings.TrimSpace(raw))) {
	case "", HostingBackendCLI:
		return HostingBackendCLI, nil
	case HostingBackendAPI:
		return HostingBackendAPI, nil
	default:
		return "", fmt.Errorf(unsupportedHostingBackendTemplateConstant, raw)
	}
}

// VersionControlBackend selects how working copies are cloned and updated.
type VersionControlBackend string

// Supported version control backends.
const (
	VersionControlBackendCLI   VersionControlBackend = "cli"
	VersionControlBackendGoGit VersionControlBackend = "go-git"
)

// ParseVersionControlBackend normalizes a configured version control backend. Empty selects the git CLI.
func ParseVersionControlBackend(raw string) (VersionControlBackend, error) {
	switch VersionControlBackend(strings.ToLower(strings.TrimSpace(raw))) {
	case "", VersionControlBackendCLI:
		return VersionControlBackendCLI, nil
	case VersionControlBackendGoGit:
		return VersionControlBackendGoGit, nil
	default:
		return "", fmt.Errorf(unsupportedVersionControlTemplateConstant, raw)
	}
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FileSystem exposes filesystem operations required by the export workflow.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	Remove(path string) error
	Glob(pattern string) ([]string, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// CommandExecutor exposes the subset of shell execution used by the export workflow.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteCommand(executionContext context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryLister enumerates the repositories of an owner as raw listing lines.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context, owner string, limit int) ([]string, error)
}

// DefaultBranchSource answers the default branch of an "owner/name" repository.
type DefaultBranchSource interface {
	ResolveDefaultBranch(executionContext context.Context, fullName string) (string, error)
}

// VersionControlClient performs the git operations needed to maintain a working copy.
type VersionControlClient interface {
	Clone(executionContext context.Context, remoteURL string, destination string) error
	Checkout(executionContext context.Context, repositoryPath string, branch string) error
	Pull(executionContext context.Context, repositoryPath string, branch string) error
}
