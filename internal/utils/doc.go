// Package utils holds the configuration loading, logger construction and path
// helpers shared by the orgdump command and its services.
package utils
