package extractor

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

const (
	interpreterEnvironmentVariableConstant = "PYTHON"
	interpreterNotFoundMessageConstant     = "no python interpreter found; set --interpreter or $PYTHON"
)

// ErrInterpreterNotFound indicates no interpreter could be located.
var ErrInterpreterNotFound = errors.New(interpreterNotFoundMessageConstant)

var defaultInterpreterCandidates = []string{"python3", "python"}

// InterpreterResolver picks the interpreter used to run the extraction tool.
type InterpreterResolver struct {
	LookPath func(file string) (string, error)
	Getenv   func(key string) string
}

// NewInterpreterResolver constructs a resolver backed by the process environment.
func NewInterpreterResolver() InterpreterResolver {
	return InterpreterResolver{LookPath: exec.LookPath, Getenv: os.Getenv}
}

// Resolve returns the configured interpreter when set, otherwise $PYTHON, otherwise the first of python3 and python found on PATH.
func (resolver InterpreterResolver) Resolve(configured string) (string, error) {
	if trimmed := strings.TrimSpace(configured); len(trimmed) > 0 {
		return trimmed, nil
	}

	getenv := resolver.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if fromEnvironment := strings.TrimSpace(getenv(interpreterEnvironmentVariableConstant)); len(fromEnvironment) > 0 {
		return fromEnvironment, nil
	}

	lookPath := resolver.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, candidate := range defaultInterpreterCandidates {
		if resolvedPath, lookupError := lookPath(candidate); lookupError == nil {
			return resolvedPath, nil
		}
	}
	return "", ErrInterpreterNotFound
}
