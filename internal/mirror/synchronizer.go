package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

const (
	versionControlMissingMessageConstant   = "version control client not configured"
	remoteURLBuilderMissingMessageConstant = "remote url builder not configured"
	fileSystemMissingMessageConstant       = "file system not configured"
	fullNameRequiredMessageConstant        = "repository full name must be provided"
	destinationRequiredMessageConstant     = "destination must be provided"
	branchRequiredMessageConstant          = "branch must be provided"
	synchronizationErrorTemplateConstant   = "%s failed for %s at %s: %v"
	destinationInspectionTemplateConstant  = "failed to inspect %s: %w"
	cloneCheckoutWarningMessageConstant    = "Checkout after clone failed; keeping the cloned default branch"
	cloneCompletedMessageConstant          = "Cloned repository"
	updateCompletedMessageConstant         = "Updated repository"
	logFieldRepositoryConstant             = "repository"
	logFieldPathConstant                   = "path"
	logFieldBranchConstant                 = "branch"
)

// Stage names the synchronization step that failed.
type Stage string

// Synchronization stages.
const (
	StageRemoteURL Stage = "remote url"
	StageInspect   Stage = "inspect"
	StageClone     Stage = "clone"
	StageCheckout  Stage = "checkout"
	StagePull      Stage = "pull"
)

var (
	// ErrVersionControlClientNotConfigured indicates a missing VersionControlClient.
	ErrVersionControlClientNotConfigured = errors.New(versionControlMissingMessageConstant)
	// ErrRemoteURLBuilderNotConfigured indicates a missing RemoteURLBuilder.
	ErrRemoteURLBuilderNotConfigured = errors.New(remoteURLBuilderMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates a missing FileSystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
	// ErrFullNameRequired indicates the repository identifier was blank.
	ErrFullNameRequired = errors.New(fullNameRequiredMessageConstant)
	// ErrDestinationRequired indicates the destination path was blank.
	ErrDestinationRequired = errors.New(destinationRequiredMessageConstant)
	// ErrBranchRequired indicates the branch was blank.
	ErrBranchRequired = errors.New(branchRequiredMessageConstant)
)

// VersionControlClient performs the git operations needed to maintain a working copy.
type VersionControlClient interface {
	Clone(executionContext context.Context, remoteURL string, destination string) error
	Checkout(executionContext context.Context, repositoryPath string, branch string) error
	Pull(executionContext context.Context, repositoryPath string, branch string) error
}

// RemoteURLBuilder formats clone URLs for "owner/name" identifiers.
type RemoteURLBuilder interface {
	Build(fullName string) (string, error)
}

// FileSystem reports whether a destination already exists.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

// Dependencies wires the collaborators of a Synchronizer.
type Dependencies struct {
	VersionControl VersionControlClient
	RemoteURLs     RemoteURLBuilder
	FileSystem     FileSystem
	Logger         *zap.Logger
}

// Options describe one synchronization request.
type Options struct {
	FullName    string
	Destination string
	Branch      string
}

// SyncResult captures the state of a working copy after synchronization.
type SyncResult struct {
	LocalPath string
	Branch    string
	DidClone  bool
}

// SynchronizationError reports the stage at which a repository could not be synchronized.
type SynchronizationError struct {
	Stage       Stage
	FullName    string
	Destination string
	Cause       error
}

// Error describes the failure.
func (synchronizationError SynchronizationError) Error() string {
	return fmt.Sprintf(synchronizationErrorTemplateConstant, synchronizationError.Stage, synchronizationError.FullName, synchronizationError.Destination, synchronizationError.Cause)
}

// Unwrap exposes the underlying cause.
func (synchronizationError SynchronizationError) Unwrap() error {
	return synchronizationError.Cause
}

// Synchronizer ensures a local working copy exists and tracks the requested branch.
type Synchronizer struct {
	versionControl VersionControlClient
	remoteURLs     RemoteURLBuilder
	fileSystem     FileSystem
	logger         *zap.Logger
}

// NewSynchronizer validates dependencies and constructs a Synchronizer.
func NewSynchronizer(dependencies Dependencies) (*Synchronizer, error) {
	if dependencies.VersionControl == nil {
		return nil, ErrVersionControlClientNotConfigured
	}
	if dependencies.RemoteURLs == nil {
		return nil, ErrRemoteURLBuilderNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		versionControl: dependencies.VersionControl,
		remoteURLs:     dependencies.RemoteURLs,
		fileSystem:     dependencies.FileSystem,
		logger:         logger,
	}, nil
}

// Synchronize clones a missing working copy or updates an existing one.
// A missing destination is cloned and then switched to the branch; a checkout failure at that point is only logged.
// An existing destination is switched to the branch and fast-forwarded; any failure is returned.
// Nothing is ever reset, force-updated, or deleted.
func (synchronizer *Synchronizer) Synchronize(executionContext context.Context, options Options) (SyncResult, error) {
	fullName := strings.TrimSpace(options.FullName)
	if len(fullName) == 0 {
		return SyncResult{}, ErrFullNameRequired
	}
	destination := strings.TrimSpace(options.Destination)
	if len(destination) == 0 {
		return SyncResult{}, ErrDestinationRequired
	}
	branch := strings.TrimSpace(options.Branch)
	if len(branch) == 0 {
		return SyncResult{}, ErrBranchRequired
	}

	_, statError := synchronizer.fileSystem.Stat(destination)
	switch {
	case statError == nil:
		return synchronizer.update(executionContext, fullName, destination, branch)
	case errors.Is(statError, fs.ErrNotExist):
		return synchronizer.clone(executionContext, fullName, destination, branch)
	default:
		return SyncResult{}, SynchronizationError{
			Stage:       StageInspect,
			FullName:    fullName,
			Destination: destination,
			Cause:       fmt.Errorf(destinationInspectionTemplateConstant, destination, statError),
		}
	}
}

func (synchronizer *Synchronizer) clone(executionContext context.Context, fullName string, destination string, branch string) (SyncResult, error) {
	remoteURL, remoteError := synchronizer.remoteURLs.Build(fullName)
	if remoteError != nil {
		return SyncResult{}, SynchronizationError{Stage: StageRemoteURL, FullName: fullName, Destination: destination, Cause: remoteError}
	}

	if cloneError := synchronizer.versionControl.Clone(executionContext, remoteURL, destination); cloneError != nil {
		return SyncResult{}, SynchronizationError{Stage: StageClone, FullName: fullName, Destination: destination, Cause: cloneError}
	}

	if checkoutError := synchronizer.versionControl.Checkout(executionContext, destination, branch); checkoutError != nil {
		synchronizer.logger.Warn(
			cloneCheckoutWarningMessageConstant,
			zap.String(logFieldRepositoryConstant, fullName),
			zap.String(logFieldBranchConstant, branch),
			zap.Error(checkoutError),
		)
	}

	synchronizer.logger.Debug(
		cloneCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, fullName),
		zap.String(logFieldPathConstant, destination),
		zap.String(logFieldBranchConstant, branch),
	)

	return SyncResult{LocalPath: destination, Branch: branch, DidClone: true}, nil
}

func (synchronizer *Synchronizer) update(executionContext context.Context, fullName string, destination string, branch string) (SyncResult, error) {
	if checkoutError := synchronizer.versionControl.Checkout(executionContext, destination, branch); checkoutError != nil {
		return SyncResult{}, SynchronizationError{Stage: StageCheckout, FullName: fullName, Destination: destination, Cause: checkoutError}
	}

	if pullError := synchronizer.versionControl.Pull(executionContext, destination, branch); pullError != nil {
		return SyncResult{}, SynchronizationError{Stage: StagePull, FullName: fullName, Destination: destination, Cause: pullError}
	}

	synchronizer.logger.Debug(
		updateCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, fullName),
		zap.String(logFieldPathConstant, destination),
		zap.String(logFieldBranchConstant, branch),
	)

	return SyncResult{LocalPath: destination, Branch: branch, DidClone: false}, nil
}
