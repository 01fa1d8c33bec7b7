// Package mirror maintains one local working copy per repository.
//
// The Synchronizer clones repositories that are missing locally and, for
// existing working copies, checks out the resolved branch and fast-forwards
// it. Git work is delegated to a VersionControlClient so the git executable
// and go-git backends are interchangeable.
package mirror
