// Package githubapi lists organization repositories and resolves default
// branches through the GitHub REST API using go-github.
package githubapi
