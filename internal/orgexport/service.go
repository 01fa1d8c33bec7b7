package orgexport

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/extractor"
	"github.com/temirov/orgdump/internal/mirror"
	"github.com/temirov/orgdump/internal/repos/shared"
)

const (
	listerMissingMessageConstant         = "repository lister not configured"
	branchResolverMissingMessageConstant = "branch resolver not configured"
	synchronizerMissingMessageConstant   = "synchronizer not configured"
	exporterMissingMessageConstant       = "exporter not configured"
	fileSystemMissingMessageConstant     = "file system not configured"
	rootDirectoryRoleConstant            = "repository root"
	outputDirectoryRoleConstant          = "output"
	outputFileExtensionConstant          = ".txt"
	directoryPermissionsConstant         = 0o755
	defaultIgnoreFileNameConstant        = ".gitignore"
	listingCompletedMessageConstant      = "Repository listing completed"
	malformedLineMessageConstant         = "Skipping malformed listing line"
	repositoryStartedMessageConstant     = "Processing repository"
	synchronizationFailedMessageConstant = "Repository synchronization failed"
	exportFailedMessageConstant          = "Repository export failed"
	repositoryExportedMessageConstant    = "Repository exported"
	runCompletedMessageConstant          = "Export run completed"
	runInterruptedMessageConstant        = "Export run interrupted"
	logFieldOrganizationConstant         = "organization"
	logFieldRepositoryConstant           = "repository"
	logFieldLineConstant                 = "line"
	logFieldIndexConstant                = "index"
	logFieldBranchConstant               = "branch"
	logFieldClonedConstant               = "cloned"
	logFieldOutputFileConstant           = "output_file"
	logFieldExitCodeConstant             = "exit_code"
	logFieldCountConstant                = "count"
	logFieldExportedConstant             = "exported"
	logFieldFailedConstant               = "failed"
	logFieldSkippedConstant              = "skipped"
	logFieldToolWarningsConstant         = "tool_warnings"
	logFieldDurationConstant             = "duration"
	logFieldRemainingConstant            = "remaining"
)

var (
	// ErrListerNotConfigured indicates a missing RepositoryLister.
	ErrListerNotConfigured = errors.New(listerMissingMessageConstant)
	// ErrBranchResolverNotConfigured indicates a missing BranchResolver.
	ErrBranchResolverNotConfigured = errors.New(branchResolverMissingMessageConstant)
	// ErrSynchronizerNotConfigured indicates a missing Synchronizer.
	ErrSynchronizerNotConfigured = errors.New(synchronizerMissingMessageConstant)
	// ErrExporterNotConfigured indicates a missing Exporter.
	ErrExporterNotConfigured = errors.New(exporterMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates a missing FileSystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
)

// BranchResolver chooses the branch to synchronize for a repository.
type BranchResolver interface {
	ResolveBranch(executionContext context.Context, fullName string) BranchResolution
}

// Synchronizer keeps a local working copy current.
type Synchronizer interface {
	Synchronize(executionContext context.Context, options mirror.Options) (mirror.SyncResult, error)
}

// Exporter runs the extraction tool against a working copy.
type Exporter interface {
	Export(executionContext context.Context, request extractor.Request) (extractor.ExportOutcome, error)
}

// Dependencies wires the collaborators of a Service.
type Dependencies struct {
	Lister         shared.RepositoryLister
	BranchResolver BranchResolver
	Synchronizer   Synchronizer
	Exporter       Exporter
	FileSystem     shared.FileSystem
	Clock          shared.Clock
	Logger         *zap.Logger
}

// Options configure one export run.
type Options struct {
	Organization      string
	Limit             int
	RootDirectory     string
	OutputDirectory   string
	StaticExcludeFile string
	IgnoreFileName    string
	SkipSubstring     string
	MaxChunkSize      int
}

// Service runs the sequential list, resolve, synchronize, and export loop.
type Service struct {
	lister         shared.RepositoryLister
	branchResolver BranchResolver
	synchronizer   Synchronizer
	exporter       Exporter
	fileSystem     shared.FileSystem
	clock          shared.Clock
	logger         *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Lister == nil {
		return nil, ErrListerNotConfigured
	}
	if dependencies.BranchResolver == nil {
		return nil, ErrBranchResolverNotConfigured
	}
	if dependencies.Synchronizer == nil {
		return nil, ErrSynchronizerNotConfigured
	}
	if dependencies.Exporter == nil {
		return nil, ErrExporterNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		lister:         dependencies.Lister,
		branchResolver: dependencies.BranchResolver,
		synchronizer:   dependencies.Synchronizer,
		exporter:       dependencies.Exporter,
		fileSystem:     dependencies.FileSystem,
		clock:          clock,
		logger:         logger,
	}, nil
}

// Run prepares the directories, lists the organization, and processes every listing line in order.
// Directory and listing failures end the run with an error. Failures of individual repositories are
// recorded in the summary and never stop the loop.
func (service *Service) Run(executionContext context.Context, options Options) (RunSummary, error) {
	organization := strings.TrimSpace(options.Organization)
	if len(organization) == 0 {
		return RunSummary{}, ErrOrganizationRequired
	}

	summary := RunSummary{Organization: organization, StartedAt: service.clock.Now()}

	for _, directory := range []struct {
		role string
		path string
	}{
		{role: rootDirectoryRoleConstant, path: options.RootDirectory},
		{role: outputDirectoryRoleConstant, path: options.OutputDirectory},
	} {
		if mkdirError := service.fileSystem.MkdirAll(directory.path, directoryPermissionsConstant); mkdirError != nil {
			return summary, DirectoryError{Role: directory.role, Path: directory.path, Cause: mkdirError}
		}
	}

	listingLines, listingError := service.lister.ListRepositories(executionContext, organization, options.Limit)
	if listingError != nil {
		return summary, ListingError{Organization: organization, Cause: listingError}
	}
	if len(listingLines) == 0 {
		return summary, ListingError{Organization: organization, Cause: ErrEmptyListing}
	}

	service.logger.Info(
		listingCompletedMessageConstant,
		zap.String(logFieldOrganizationConstant, organization),
		zap.Int(logFieldCountConstant, len(listingLines)),
	)

	summary.Results = make([]RepositoryResult, 0, len(listingLines))
	for lineIndex, listingLine := range listingLines {
		if interruption := executionContext.Err(); interruption != nil {
			summary.Interrupted = true
			summary.FinishedAt = service.clock.Now()
			service.logger.Warn(
				runInterruptedMessageConstant,
				zap.String(logFieldOrganizationConstant, organization),
				zap.Int(logFieldCountConstant, len(summary.Results)),
				zap.Int(logFieldRemainingConstant, len(listingLines)-lineIndex),
			)
			return summary, interruption
		}
		summary.Results = append(summary.Results, service.processLine(executionContext, lineIndex, listingLine, options))
	}

	summary.FinishedAt = service.clock.Now()
	counts := summary.Counts()
	service.logger.Info(
		runCompletedMessageConstant,
		zap.String(logFieldOrganizationConstant, organization),
		zap.Int(logFieldCountConstant, counts.Listed),
		zap.Int(logFieldExportedConstant, counts.Exported),
		zap.Int(logFieldFailedConstant, counts.Failed),
		zap.Int(logFieldSkippedConstant, counts.Skipped),
		zap.Int(logFieldToolWarningsConstant, counts.ToolWarnings),
		zap.Duration(logFieldDurationConstant, summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, nil
}

func (service *Service) processLine(executionContext context.Context, lineIndex int, listingLine string, options Options) RepositoryResult {
	result := RepositoryResult{Line: listingLine, State: StatePending}

	descriptor, parseError := ParseListingLine(listingLine)
	if parseError != nil {
		result.fail(parseError)
		service.logger.Warn(
			malformedLineMessageConstant,
			zap.Int(logFieldIndexConstant, lineIndex),
			zap.String(logFieldLineConstant, listingLine),
			zap.Error(parseError),
		)
		return result
	}
	result.FullName = descriptor.FullName
	result.ShortName = descriptor.ShortName
	result.State = StateParsed

	service.logger.Debug(repositoryStartedMessageConstant, zap.String(logFieldRepositoryConstant, descriptor.FullName), zap.Int(logFieldIndexConstant, lineIndex))

	resolution := service.branchResolver.ResolveBranch(executionContext, descriptor.FullName)
	result.Branch = resolution.Branch
	result.BranchFallback = resolution.Fallback
	result.State = StateBranchResolved

	syncResult, syncError := service.synchronizer.Synchronize(executionContext, mirror.Options{
		FullName:    descriptor.FullName,
		Destination: filepath.Join(options.RootDirectory, descriptor.ShortName),
		Branch:      resolution.Branch,
	})
	if syncError != nil {
		result.fail(syncError)
		service.logger.Warn(
			synchronizationFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, descriptor.FullName),
			zap.String(logFieldBranchConstant, resolution.Branch),
			zap.Error(syncError),
		)
		return result
	}
	result.LocalPath = syncResult.LocalPath
	result.DidClone = syncResult.DidClone
	result.State = StateSynchronized

	ignoreFileName := strings.TrimSpace(options.IgnoreFileName)
	if len(ignoreFileName) == 0 {
		ignoreFileName = defaultIgnoreFileNameConstant
	}
	result.OutputFile = filepath.Join(options.OutputDirectory, descriptor.ShortName+outputFileExtensionConstant)

	outcome, exportError := service.exporter.Export(executionContext, extractor.Request{
		RepositoryPath:    syncResult.LocalPath,
		OutputFile:        result.OutputFile,
		IgnoreFile:        filepath.Join(syncResult.LocalPath, ignoreFileName),
		StaticExcludeFile: options.StaticExcludeFile,
		SkipSubstring:     options.SkipSubstring,
		MaxChunkSize:      options.MaxChunkSize,
	})
	if exportError != nil {
		result.fail(exportError)
		service.logger.Warn(
			exportFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, descriptor.FullName),
			zap.Error(exportError),
		)
		return result
	}
	result.ExitCode = outcome.ExitCode
	result.ProducedFiles = outcome.ProducedFiles
	result.State = StateExported

	service.logger.Info(
		repositoryExportedMessageConstant,
		zap.String(logFieldRepositoryConstant, descriptor.FullName),
		zap.String(logFieldBranchConstant, resolution.Branch),
		zap.Bool(logFieldClonedConstant, syncResult.DidClone),
		zap.String(logFieldOutputFileConstant, result.OutputFile),
		zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
	)

	return result
}
