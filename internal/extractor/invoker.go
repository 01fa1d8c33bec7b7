package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/execshell"
)

const (
	executorMissingMessageConstant       = "command executor not configured"
	fileSystemMissingMessageConstant     = "file system not configured"
	interpreterMissingMessageConstant    = "interpreter must be provided"
	toolPathMissingMessageConstant       = "extraction tool path must be provided"
	repositoryPathMissingMessageConstant = "repository path must be provided"
	outputFileMissingMessageConstant     = "output file must be provided"
	invocationErrorTemplateConstant      = "extraction %s failed for %s: %v"
	skipSubstringFlagConstant            = "--skip-substring"
	maxChunkSizeFlagConstant             = "--max-chunk-size"
	chunkFileInfixConstant               = "_part_"
	chunkFileWildcardConstant            = "*"
	textFileExtensionConstant            = ".txt"
	staleOutputRemovedMessageConstant    = "Removed stale export output"
	ignoreFileMissingMessageConstant     = "Repository ignore file not found; the tool will skip it"
	exportNonZeroExitMessageConstant     = "Extraction tool exited with non-zero status"
	exportCompletedMessageConstant       = "Extraction completed"
	logFieldRepositoryPathConstant       = "repository_path"
	logFieldOutputFileConstant           = "output_file"
	logFieldIgnoreFileConstant           = "ignore_file"
	logFieldExitCodeConstant             = "exit_code"
	logFieldProducedFilesConstant        = "produced_files"
	logFieldRemovedFileConstant          = "removed_file"
	logFieldStandardErrorConstant        = "stderr"
	extractionLabelTemplateConstant      = "extraction of %s into %s"
)

// InvocationStage names the export step that failed.
type InvocationStage string

// Export stages.
const (
	StageCleanup   InvocationStage = "cleanup"
	StageExecution InvocationStage = "execution"
)

var (
	// ErrExecutorNotConfigured indicates a missing CommandExecutor.
	ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates a missing FileSystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
	// ErrInterpreterRequired indicates the interpreter was blank.
	ErrInterpreterRequired = errors.New(interpreterMissingMessageConstant)
	// ErrToolPathRequired indicates the extraction tool path was blank.
	ErrToolPathRequired = errors.New(toolPathMissingMessageConstant)
	// ErrRepositoryPathRequired indicates the repository path was blank.
	ErrRepositoryPathRequired = errors.New(repositoryPathMissingMessageConstant)
	// ErrOutputFileRequired indicates the output file was blank.
	ErrOutputFileRequired = errors.New(outputFileMissingMessageConstant)
)

// CommandExecutor runs arbitrary executables through execshell.
type CommandExecutor interface {
	ExecuteCommand(executionContext context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the file operations used around an export.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Remove(path string) error
	Glob(pattern string) ([]string, error)
}

// Dependencies wires the collaborators of an Invoker.
type Dependencies struct {
	Executor   CommandExecutor
	FileSystem FileSystem
	Logger     *zap.Logger
}

// Tool identifies the interpreter and the extraction script it runs.
type Tool struct {
	Interpreter string
	ScriptPath  string
}

// Request describes one export of a working copy.
type Request struct {
	RepositoryPath    string
	OutputFile        string
	IgnoreFile        string
	StaticExcludeFile string
	SkipSubstring     string
	MaxChunkSize      int
}

// ExportOutcome records the artifact location and the tool's exit status.
type ExportOutcome struct {
	TextFilePath  string
	ExitCode      int
	ProducedFiles []string
}

// InvocationError reports an export that could not be carried out.
type InvocationError struct {
	Stage          InvocationStage
	RepositoryPath string
	Cause          error
}

// Error describes the failure.
func (invocationError InvocationError) Error() string {
	return fmt.Sprintf(invocationErrorTemplateConstant, invocationError.Stage, invocationError.RepositoryPath, invocationError.Cause)
}

// Unwrap exposes the underlying cause.
func (invocationError InvocationError) Unwrap() error {
	return invocationError.Cause
}

// Invoker removes stale output and runs the extraction tool against a working copy.
type Invoker struct {
	executor   CommandExecutor
	fileSystem FileSystem
	logger     *zap.Logger
	tool       Tool
}

// NewInvoker validates dependencies and constructs an Invoker.
func NewInvoker(dependencies Dependencies, tool Tool) (*Invoker, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if len(strings.TrimSpace(tool.Interpreter)) == 0 {
		return nil, ErrInterpreterRequired
	}
	if len(strings.TrimSpace(tool.ScriptPath)) == 0 {
		return nil, ErrToolPathRequired
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{executor: dependencies.Executor, fileSystem: dependencies.FileSystem, logger: logger, tool: tool}, nil
}

// BuildArguments returns the positional argument list passed to the interpreter.
func (invoker *Invoker) BuildArguments(request Request) []string {
	return []string{
		invoker.tool.ScriptPath,
		request.RepositoryPath,
		request.OutputFile,
		request.IgnoreFile,
		request.StaticExcludeFile,
		skipSubstringFlagConstant,
		request.SkipSubstring,
		maxChunkSizeFlagConstant,
		strconv.Itoa(request.MaxChunkSize),
	}
}

// Export deletes prior output for the request, runs the tool, and reports its exit status.
// A non-zero exit status is logged and returned in the outcome, not as an error.
func (invoker *Invoker) Export(executionContext context.Context, request Request) (ExportOutcome, error) {
	if len(strings.TrimSpace(request.RepositoryPath)) == 0 {
		return ExportOutcome{}, ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(request.OutputFile)) == 0 {
		return ExportOutcome{}, ErrOutputFileRequired
	}

	if removalError := invoker.removeStaleOutput(request.OutputFile); removalError != nil {
		return ExportOutcome{}, InvocationError{Stage: StageCleanup, RepositoryPath: request.RepositoryPath, Cause: removalError}
	}

	if len(request.IgnoreFile) > 0 {
		if _, statError := invoker.fileSystem.Stat(request.IgnoreFile); statError != nil {
			invoker.logger.Debug(ignoreFileMissingMessageConstant, zap.String(logFieldIgnoreFileConstant, request.IgnoreFile))
		}
	}

	outcome := ExportOutcome{TextFilePath: request.OutputFile}
	_, executionError := invoker.executor.ExecuteCommand(executionContext, execshell.CommandName(invoker.tool.Interpreter), execshell.CommandDetails{
		Arguments:        invoker.BuildArguments(request),
		WorkingDirectory: request.RepositoryPath,
		Label:            fmt.Sprintf(extractionLabelTemplateConstant, request.RepositoryPath, request.OutputFile),
		TailOutput:       true,
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if !errors.As(executionError, &failedError) {
			return ExportOutcome{}, InvocationError{Stage: StageExecution, RepositoryPath: request.RepositoryPath, Cause: executionError}
		}
		if contextError := executionContext.Err(); contextError != nil {
			return ExportOutcome{}, InvocationError{Stage: StageExecution, RepositoryPath: request.RepositoryPath, Cause: errors.Join(contextError, executionError)}
		}
		outcome.ExitCode = failedError.Result.ExitCode
		invoker.logger.Warn(
			exportNonZeroExitMessageConstant,
			zap.String(logFieldRepositoryPathConstant, request.RepositoryPath),
			zap.String(logFieldOutputFileConstant, request.OutputFile),
			zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(failedError.Result.StandardError)),
		)
	}

	outcome.ProducedFiles = invoker.producedFiles(request.OutputFile)

	invoker.logger.Debug(
		exportCompletedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, request.RepositoryPath),
		zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
		zap.Strings(logFieldProducedFilesConstant, outcome.ProducedFiles),
	)

	return outcome, nil
}

func (invoker *Invoker) removeStaleOutput(outputFile string) error {
	stalePaths, globError := invoker.fileSystem.Glob(chunkFilePattern(outputFile))
	if globError != nil {
		return globError
	}
	stalePaths = append([]string{outputFile}, stalePaths...)

	for _, stalePath := range stalePaths {
		if _, statError := invoker.fileSystem.Stat(stalePath); statError != nil {
			continue
		}
		if removeError := invoker.fileSystem.Remove(stalePath); removeError != nil {
			return removeError
		}
		invoker.logger.Debug(staleOutputRemovedMessageConstant, zap.String(logFieldRemovedFileConstant, stalePath))
	}
	return nil
}

func (invoker *Invoker) producedFiles(outputFile string) []string {
	var produced []string
	if _, statError := invoker.fileSystem.Stat(outputFile); statError == nil {
		produced = append(produced, outputFile)
	}
	chunkFiles, globError := invoker.fileSystem.Glob(chunkFilePattern(outputFile))
	if globError == nil {
		sort.Strings(chunkFiles)
		produced = append(produced, chunkFiles...)
	}
	return produced
}

// chunkFilePattern matches the "<name>_part_<N>.txt" files written when output is split.
func chunkFilePattern(outputFile string) string {
	directory, fileName := filepath.Split(outputFile)
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return filepath.Join(directory, escapeGlob(stem)+chunkFileInfixConstant+chunkFileWildcardConstant+textFileExtensionConstant)
}

func escapeGlob(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)
	return replacer.Replace(value)
}
