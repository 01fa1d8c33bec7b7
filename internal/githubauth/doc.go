// Package githubauth locates GitHub credentials in the environment.
package githubauth
