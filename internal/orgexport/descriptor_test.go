package orgexport_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/orgdump/internal/orgexport"
)

func TestParseListingLine(testInstance *testing.T) {
	testCases := []struct {
		name              string
		line              string
		expectedFullName  string
		expectedShortName string
		expectError       bool
	}{
		{name: "gh_listing_columns", line: "my-org/widgets\tWidget service\tpublic\t2024-05-01T10:00:00Z", expectedFullName: "my-org/widgets", expectedShortName: "widgets"},
		{name: "space_separated", line: "my-org/gadgets   internal tooling", expectedFullName: "my-org/gadgets", expectedShortName: "gadgets"},
		{name: "leading_whitespace", line: "   my-org/tools", expectedFullName: "my-org/tools", expectedShortName: "tools"},
		{name: "nested_path_uses_last_segment", line: "host/my-org/deep", expectedFullName: "host/my-org/deep", expectedShortName: "deep"},
		{name: "empty_line", line: "   ", expectError: true},
		{name: "missing_separator", line: "widgets\tno owner", expectError: true},
		{name: "trailing_separator", line: "my-org/\tdescription", expectError: true},
		{name: "dot_segment", line: "my-org/..", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			descriptor, parseError := orgexport.ParseListingLine(testCase.line)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				var descriptorError orgexport.DescriptorParseError
				require.True(testInstance, errors.As(parseError, &descriptorError))
				require.Equal(testInstance, testCase.line, descriptorError.Line)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedFullName, descriptor.FullName)
			require.Equal(testInstance, testCase.expectedShortName, descriptor.ShortName)
		})
	}
}
