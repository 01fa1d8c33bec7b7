// Package githubcli lists repositories and looks up default branches by
// running the GitHub CLI through execshell.
package githubcli
