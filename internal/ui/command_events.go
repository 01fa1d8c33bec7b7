package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/execshell"
)

// ConsoleCommandEventLogger prints one line per external command on the console.
// Successful completions are emitted at debug level so a normal run shows what
// started and what failed without repeating every step.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger wraps the console logger. A nil logger discards output.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted reports a command about to run.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted reports the exit status of a finished command.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode != 0 {
		eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
		return
	}
	eventLogger.logger.Debug(eventLogger.formatter.BuildSuccessMessage(command))
}

// CommandExecutionFailed reports a command that could not be run at all.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
