package orgexport

import (
	"errors"
	"fmt"
)

const (
	emptyListingMessageConstant          = "repository listing returned no repositories"
	organizationRequiredMessageConstant  = "organization must be provided"
	listingErrorTemplateConstant         = "unable to list repositories for %s: %v"
	directoryErrorTemplateConstant       = "unable to create %s directory %s: %v"
	descriptorParseErrorTemplateConstant = "malformed listing line %q: %s"
)

var (
	// ErrEmptyListing indicates the listing succeeded but returned nothing.
	ErrEmptyListing = errors.New(emptyListingMessageConstant)
	// ErrOrganizationRequired indicates the organization was blank.
	ErrOrganizationRequired = errors.New(organizationRequiredMessageConstant)
)

// ListingError reports a listing that failed or returned no repositories. It ends the run.
type ListingError struct {
	Organization string
	Cause        error
}

// Error describes the listing failure.
func (listingError ListingError) Error() string {
	return fmt.Sprintf(listingErrorTemplateConstant, listingError.Organization, listingError.Cause)
}

// Unwrap exposes the underlying cause.
func (listingError ListingError) Unwrap() error {
	return listingError.Cause
}

// DirectoryError reports a working directory that could not be created. It ends the run.
type DirectoryError struct {
	Role  string
	Path  string
	Cause error
}

// Error describes the directory failure.
func (directoryError DirectoryError) Error() string {
	return fmt.Sprintf(directoryErrorTemplateConstant, directoryError.Role, directoryError.Path, directoryError.Cause)
}

// Unwrap exposes the underlying cause.
func (directoryError DirectoryError) Unwrap() error {
	return directoryError.Cause
}

// DescriptorParseError reports a listing line without a usable repository identifier.
type DescriptorParseError struct {
	Line   string
	Reason string
}

// Error describes the parse failure.
func (parseError DescriptorParseError) Error() string {
	return fmt.Sprintf(descriptorParseErrorTemplateConstant, parseError.Line, parseError.Reason)
}
