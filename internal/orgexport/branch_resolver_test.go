package orgexport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/orgdump/internal/orgexport"
)

type stubBranchSource struct {
	branch      string
	lookupError error
	requested   []string
}

func (source *stubBranchSource) ResolveDefaultBranch(_ context.Context, fullName string) (string, error) {
	source.requested = append(source.requested, fullName)
	return source.branch, source.lookupError
}

func TestDefaultBranchResolver(testInstance *testing.T) {
	lookupFailure := errors.New("HTTP 404: Not Found")

	testCases := []struct {
		name             string
		source           *stubBranchSource
		fallback         string
		expectedBranch   string
		expectedFallback bool
		expectedCause    error
		expectedLevel    zapcore.Level
		expectLog        bool
	}{
		{name: "reported_branch", source: &stubBranchSource{branch: "develop\n"}, expectedBranch: "develop"},
		{name: "lookup_failure_uses_main", source: &stubBranchSource{lookupError: lookupFailure}, expectedBranch: "main", expectedFallback: true, expectedCause: lookupFailure, expectedLevel: zapcore.WarnLevel, expectLog: true},
		{name: "empty_answer_uses_main", source: &stubBranchSource{branch: "  "}, expectedBranch: "main", expectedFallback: true, expectedLevel: zapcore.DebugLevel, expectLog: true},
		{name: "configured_fallback", source: &stubBranchSource{lookupError: lookupFailure}, fallback: "trunk", expectedBranch: "trunk", expectedFallback: true, expectedCause: lookupFailure, expectedLevel: zapcore.WarnLevel, expectLog: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			resolver := orgexport.NewDefaultBranchResolver(testCase.source, testCase.fallback, zap.New(observerCore))

			resolution := resolver.ResolveBranch(context.Background(), "my-org/widgets")

			require.Equal(testInstance, testCase.expectedBranch, resolution.Branch)
			require.Equal(testInstance, testCase.expectedFallback, resolution.Fallback)
			require.Equal(testInstance, testCase.expectedCause, resolution.Cause)
			require.Equal(testInstance, []string{"my-org/widgets"}, testCase.source.requested)

			entries := observedLogs.All()
			if !testCase.expectLog {
				require.Empty(testInstance, entries)
				return
			}
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, "my-org/widgets", entries[0].ContextMap()["repository"])
		})
	}
}

func TestDefaultBranchResolverWithoutSourceFallsBack(testInstance *testing.T) {
	resolver := orgexport.NewDefaultBranchResolver(nil, "", nil)

	resolution := resolver.ResolveBranch(context.Background(), "my-org/widgets")

	require.Equal(testInstance, orgexport.BranchResolution{Branch: "main", Fallback: true}, resolution)
}
