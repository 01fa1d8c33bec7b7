package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s command exited with code %d"
	commandFailedWithStandardErrorTemplate    = "%s command exited with code %d: %s"
	commandExecutionErrorTemplateConstant     = "%s command failed: %v"
	commandTerminatedErrorTemplateConstant    = "terminated with exit code %d: %w"
	logFieldCommandNameConstant               = "command_name"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
)

// CommandName identifies an executable invoked through the executor.
type CommandName string

// Supported command names.
const (
	CommandGit    CommandName = CommandName("git")
	CommandGitHub CommandName = CommandName("gh")
)

// CommandDetails describes arguments and environment for a command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// Label replaces the rendered command line in console messages when set.
	Label string
	// TailOutput keeps only the most recent standard output bytes. Commands whose output is parsed leave it unset.
	TailOutput bool
}

// ShellCommand couples a command name with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a ShellCommand and reports its result.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that ran but exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithStandardErrorTemplate, failedError.Command.Name, failedError.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandEventObserver is notified as each external command starts and finishes.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports a command that could not be started or awaited.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type silentObserver struct{}

func (silentObserver) CommandStarted(ShellCommand) {}
func (silentObserver) CommandCompleted(ShellCommand, ExecutionResult) {}
func (silentObserver) CommandExecutionFailed(ShellCommand, error) {}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(executor *ShellExecutor)

// WithCommandEventObserver registers an observer notified about every command lifecycle event.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithCommandTimeout bounds every command with the provided timeout. Non-positive values disable the bound.
func WithCommandTimeout(timeout time.Duration) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		executor.commandTimeout = timeout
	}
}

// ShellExecutor runs external commands with structured logging.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	observer       CommandEventObserver
	formatter      CommandMessageFormatter
	commandTimeout time.Duration
}

// NewShellExecutor constructs a ShellExecutor from a logger and a runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		runner:   runner,
		observer: silentObserver{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// ExecuteGit runs git with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs gh with the supplied details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

// ExecuteCommand runs an arbitrary executable, such as the extraction interpreter.
func (executor *ShellExecutor) ExecuteCommand(executionContext context.Context, name CommandName, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: name, Details: details})
}

// Execute runs the command and converts non-zero exit codes into CommandFailedError.
// A command terminated because its context ended is reported as CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if executor.commandTimeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, executor.commandTimeout)
		defer cancel()
	}

	executor.logger.Debug(
		executor.formatter.BuildStartedMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError == nil && executionResult.ExitCode != 0 && executionContext.Err() != nil {
		// Killed on timeout or cancellation, so the output is partial.
		runError = fmt.Errorf(commandTerminatedErrorTemplateConstant, executionResult.ExitCode, executionContext.Err())
	}
	if runError != nil {
		executor.logger.Error(
			executor.formatter.BuildExecutionFailureMessage(command, runError),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(command, executionResult),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		executor.formatter.BuildSuccessMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
	)
	return executionResult, nil
}
