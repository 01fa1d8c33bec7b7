package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
	defaultOutputCaptureLimitConstant      = 1 << 20
)

// OSCommandRunner executes commands using the operating system facilities.
// Standard error is always bounded; standard output is bounded only for commands that request TailOutput.
type OSCommandRunner struct {
	outputCaptureLimit int
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{outputCaptureLimit: defaultOutputCaptureLimitConstant}
}

// Run executes the supplied command using os/exec.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer outputBuffer = &bytes.Buffer{}
	if command.Details.TailOutput {
		standardOutputBuffer = newTailBuffer(runner.captureLimit())
	}
	standardErrorBuffer := newTailBuffer(runner.captureLimit())
	executable.Stdout = standardOutputBuffer
	executable.Stderr = standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}

func (runner *OSCommandRunner) captureLimit() int {
	if runner == nil || runner.outputCaptureLimit <= 0 {
		return defaultOutputCaptureLimitConstant
	}
	return runner.outputCaptureLimit
}

// mergeEnvironment overlays overrides onto the base environment, replacing existing keys.
func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(baseEnvironment)+len(overrides))
	for _, assignment := range baseEnvironment {
		key, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[key]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}

	overrideKeys := make([]string, 0, len(overrides))
	for key := range overrides {
		overrideKeys = append(overrideKeys, key)
	}
	sort.Strings(overrideKeys)
	for _, key := range overrideKeys {
		merged = append(merged, key+environmentAssignmentSeparatorConstant+overrides[key])
	}
	return merged
}

type outputBuffer interface {
	io.Writer
	String() string
}

// tailBuffer keeps only the most recent limit bytes written to it.
type tailBuffer struct {
	limit  int
	buffer []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (buffer *tailBuffer) Write(data []byte) (int, error) {
	buffer.buffer = append(buffer.buffer, data...)
	if overflow := len(buffer.buffer) - buffer.limit; overflow > 0 {
		buffer.buffer = append(buffer.buffer[:0], buffer.buffer[overflow:]...)
	}
	return len(data), nil
}

func (buffer *tailBuffer) String() string {
	return string(buffer.buffer)
}
