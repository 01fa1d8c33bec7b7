package orgexport

import (
	"strings"
)

const (
	repositoryPathSeparatorConstant     = "/"
	emptyLineReasonConstant             = "listing line is empty"
	missingOwnerSeparatorReasonConstant = "first field has no owner/name separator"
	emptyShortNameReasonConstant        = "repository name is empty"
	reservedShortNameReasonConstant     = "repository name is not a usable directory name"
)

// RepositoryDescriptor identifies one repository from a listing line.
type RepositoryDescriptor struct {
	FullName  string
	ShortName string
}

// ParseListingLine extracts the repository identity from a raw listing line.
// The first whitespace-separated field is the "owner/name" identifier; the rest of the line is ignored.
func ParseListingLine(line string) (RepositoryDescriptor, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return RepositoryDescriptor{}, DescriptorParseError{Line: line, Reason: emptyLineReasonConstant}
	}

	fullName := fields[0]
	if !strings.Contains(fullName, repositoryPathSeparatorConstant) {
		return RepositoryDescriptor{}, DescriptorParseError{Line: line, Reason: missingOwnerSeparatorReasonConstant}
	}

	segments := strings.Split(fullName, repositoryPathSeparatorConstant)
	shortName := segments[len(segments)-1]
	switch shortName {
	case "":
		return RepositoryDescriptor{}, DescriptorParseError{Line: line, Reason: emptyShortNameReasonConstant}
	case ".", "..":
		return RepositoryDescriptor{}, DescriptorParseError{Line: line, Reason: reservedShortNameReasonConstant}
	}

	return RepositoryDescriptor{FullName: fullName, ShortName: shortName}, nil
}
