// Package gitrepo drives the git executable for local working copies.
//
// RepositoryManager clones, checks out, and fast-forward pulls repositories
// through execshell, always with terminal prompts disabled. RemoteURLBuilder
// formats HTTPS or SSH clone URLs from "owner/repository" identifiers.
package gitrepo
