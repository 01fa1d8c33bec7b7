package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitPullSubcommandNameConstant     = "pull"
)

const (
	gitCloneStartTemplateConstant               = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant             = "Cloned %s into %s"
	gitCloneFailureTemplateConstant             = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant    = "Unable to clone %s into %s: %s"
	gitCheckoutStartTemplateConstant            = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant          = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant          = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant = "Unable to switch %s to branch %s: %s"
	gitPullStartTemplateConstant                = "Pulling %s from %s in %s"
	gitPullSuccessTemplateConstant              = "Pulled %s from %s in %s"
	gitPullFailureTemplateConstant              = "Failed to pull %s from %s in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant     = "Unable to pull %s from %s in %s: %s"
)

const (
	githubRepoSubcommandNameConstant     = "repo"
	githubRepoViewSubcommandNameConstant = "view"
	githubRepoListSubcommandNameConstant = "list"
)

const (
	githubRepoViewStartTemplateConstant            = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant          = "Retrieved repository details for %s"
	githubRepoViewFailureTemplateConstant          = "Failed to retrieve repository details for %s (exit code %d%s)"
	githubRepoViewExecutionFailureTemplateConstant = "Unable to retrieve repository details for %s: %s"
	githubRepoListStartTemplateConstant            = "Listing repositories for %s"
	githubRepoListSuccessTemplateConstant          = "Listed repositories for %s"
	githubRepoListFailureTemplateConstant          = "Failed to list repositories for %s (exit code %d%s)"
	githubRepoListExecutionFailureTemplateConstant = "Unable to list repositories for %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.describeGitPullMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := formatter.positionalArguments(command.Details.Arguments[1:])
	source := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	destination := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, source, destination)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, source, destination)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, source, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, source, destination, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	branchName := formatter.ensureValue(formatter.argumentAtIndex(formatter.positionalArguments(command.Details.Arguments[1:]), 0))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, branchName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, workingDirectory, branchName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPullMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positional := formatter.positionalArguments(command.Details.Arguments[1:])
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
	branchName := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPullStartTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPullSuccessTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPullFailureTemplateConstant, branchName, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPullExecutionFailureTemplateConstant, branchName, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 3 || strings.TrimSpace(arguments[0]) != githubRepoSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := formatter.ensureValue(strings.TrimSpace(arguments[2]))
	switch strings.TrimSpace(arguments[1]) {
	case githubRepoViewSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure, subject,
			githubRepoViewStartTemplateConstant,
			githubRepoViewSuccessTemplateConstant,
			githubRepoViewFailureTemplateConstant,
			githubRepoViewExecutionFailureTemplateConstant,
		)
	case githubRepoListSubcommandNameConstant:
		return formatter.describeStage(stage, result, failure, subject,
			githubRepoListStartTemplateConstant,
			githubRepoListSuccessTemplateConstant,
			githubRepoListFailureTemplateConstant,
			githubRepoListExecutionFailureTemplateConstant,
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeStage(stage messageStage, result ExecutionResult, failure error, subject string, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, subject)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, subject)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(executionFailureTemplate, subject, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	if label := strings.TrimSpace(command.Details.Label); len(label) > 0 {
		return label
	}
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// positionalArguments drops flags so "clone --quiet url dir" and "clone url dir" describe identically.
func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}
