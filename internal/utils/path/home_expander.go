package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant                = "~"
	tildeForwardSlashPrefixConstant    = "~/"
	absolutePathErrorTemplateConstant  = "unable to resolve absolute path for %q: %w"
	emptyPathErrorMessageConstant      = "path value is empty"
	environmentReferencePrefixConstant = "$"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// ErrEmptyPath indicates a path value was blank after trimming.
var ErrEmptyPath = errors.New(emptyPathErrorMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts user home shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves leading tilde prefixes and environment references.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}

	expandedPath := candidatePath
	if strings.Contains(expandedPath, environmentReferencePrefixConstant) {
		expandedPath = os.ExpandEnv(expandedPath)
	}

	if !strings.HasPrefix(expandedPath, tildeSymbolConstant) {
		return expandedPath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return expandedPath
	}

	switch {
	case expandedPath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(expandedPath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(expandedPath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(expandedPath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(expandedPath, tildeWithPathSeparatorPrefix))
	default:
		return expandedPath
	}
}

// ResolveAbsolute expands the candidate and returns a cleaned absolute path.
func (expander *HomeExpander) ResolveAbsolute(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", ErrEmptyPath
	}

	absolutePath, absoluteError := filepath.Abs(expander.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, candidatePath, absoluteError)
	}
	return absolutePath, nil
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
