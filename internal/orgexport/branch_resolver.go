package orgexport

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/repos/shared"
)

const (
	defaultFallbackBranchConstant     = "main"
	branchLookupFailedMessageConstant = "Default branch lookup failed; using fallback"
	branchLookupEmptyMessageConstant  = "Default branch not reported; using fallback"
	logFieldFallbackBranchConstant    = "fallback_branch"
)

// BranchResolution describes the branch selected for a repository.
type BranchResolution struct {
	Branch   string
	Fallback bool
	Cause    error
}

// DefaultBranchResolver asks the hosting platform for a repository's default branch and falls back when it cannot answer.
type DefaultBranchResolver struct {
	source         shared.DefaultBranchSource
	fallbackBranch string
	logger         *zap.Logger
}

// NewDefaultBranchResolver constructs a resolver. A blank fallback selects "main".
func NewDefaultBranchResolver(source shared.DefaultBranchSource, fallbackBranch string, logger *zap.Logger) *DefaultBranchResolver {
	trimmedFallback := strings.TrimSpace(fallbackBranch)
	if len(trimmedFallback) == 0 {
		trimmedFallback = defaultFallbackBranchConstant
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBranchResolver{source: source, fallbackBranch: trimmedFallback, logger: logger}
}

// ResolveBranch never fails: lookup errors and empty answers both yield the fallback branch.
func (resolver *DefaultBranchResolver) ResolveBranch(executionContext context.Context, fullName string) BranchResolution {
	if resolver.source == nil {
		return BranchResolution{Branch: resolver.fallbackBranch, Fallback: true}
	}

	branch, lookupError := resolver.source.ResolveDefaultBranch(executionContext, fullName)
	if lookupError != nil {
		resolver.logger.Warn(
			branchLookupFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, fullName),
			zap.String(logFieldFallbackBranchConstant, resolver.fallbackBranch),
			zap.Error(lookupError),
		)
		return BranchResolution{Branch: resolver.fallbackBranch, Fallback: true, Cause: lookupError}
	}

	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		resolver.logger.Debug(
			branchLookupEmptyMessageConstant,
			zap.String(logFieldRepositoryConstant, fullName),
			zap.String(logFieldFallbackBranchConstant, resolver.fallbackBranch),
		)
		return BranchResolution{Branch: resolver.fallbackBranch, Fallback: true}
	}

	return BranchResolution{Branch: trimmedBranch}
}
