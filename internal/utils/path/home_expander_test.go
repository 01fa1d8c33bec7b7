package pathutils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/orgdump/internal/utils/path"
)

const (
	testHomeDirectoryConstant = "/home/exporter"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testInstance.Setenv("ORGDUMP_TEST_BASE", "/srv/data")

	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "tilde_only", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/orgdump/repositories", expectedPath: filepath.Join(testHomeDirectoryConstant, "orgdump", "repositories")},
		{name: "absolute_untouched", input: "/var/tmp/out", expectedPath: "/var/tmp/out"},
		{name: "other_user_untouched", input: "~someone/file", expectedPath: "~someone/file"},
		{name: "environment_reference", input: "$ORGDUMP_TEST_BASE/exclude.txt", expectedPath: "/srv/data/exclude.txt"},
		{name: "empty", input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return testHomeDirectoryConstant, nil
			})
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderLeavesTildeWhenHomeUnavailable(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/data", expander.Expand("~/data"))
}

func TestHomeExpanderResolveAbsolute(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	testInstance.Chdir(workingDirectory)
	currentDirectory, currentDirectoryError := os.Getwd()
	require.NoError(testInstance, currentDirectoryError)

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	resolvedRelative, relativeError := expander.ResolveAbsolute(" out/texts ")
	require.NoError(testInstance, relativeError)
	require.Equal(testInstance, filepath.Join(currentDirectory, "out", "texts"), resolvedRelative)

	resolvedHome, homeError := expander.ResolveAbsolute("~/tool.py")
	require.NoError(testInstance, homeError)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "tool.py"), resolvedHome)

	_, emptyError := expander.ResolveAbsolute("   ")
	require.ErrorIs(testInstance, emptyError, pathutils.ErrEmptyPath)
}
