package gogitmirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	defaultRemoteNameConstant       = "origin"
	tokenUsernameConstant           = "x-access-token"
	cloneErrorTemplateConstant      = "clone %s into %s: %w"
	openErrorTemplateConstant       = "open repository %s: %w"
	worktreeErrorTemplateConstant   = "open worktree of %s: %w"
	checkoutErrorTemplateConstant   = "checkout %s in %s: %w"
	pullErrorTemplateConstant       = "pull %s in %s: %w"
	branchNotFoundTemplateConstant  = "branch %q not found locally or on %s"
	requiredValueTemplateConstant   = "%s must be provided"
	remoteURLFieldNameConstant      = "remote url"
	destinationFieldNameConstant    = "destination"
	repositoryPathFieldNameConstant = "repository path"
	branchFieldNameConstant         = "branch"
)

// Option customizes a Client.
type Option func(*Client)

// WithAccessToken authenticates HTTPS remotes with a personal access token.
func WithAccessToken(token string) Option {
	return func(client *Client) {
		trimmedToken := strings.TrimSpace(token)
		if len(trimmedToken) == 0 {
			return
		}
		client.authentication = &githttp.BasicAuth{Username: tokenUsernameConstant, Password: trimmedToken}
	}
}

// Client performs clone, checkout, and pull in-process with go-git.
type Client struct {
	authentication transport.AuthMethod
	remoteName     string
}

// NewClient constructs a go-git backed client.
func NewClient(options ...Option) *Client {
	client := &Client{remoteName: defaultRemoteNameConstant}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	return client
}

// Clone creates a working copy of remoteURL at destination.
func (client *Client) Clone(executionContext context.Context, remoteURL string, destination string) error {
	if len(strings.TrimSpace(remoteURL)) == 0 {
		return fmt.Errorf(requiredValueTemplateConstant, remoteURLFieldNameConstant)
	}
	if len(strings.TrimSpace(destination)) == 0 {
		return fmt.Errorf(requiredValueTemplateConstant, destinationFieldNameConstant)
	}

	_, cloneError := git.PlainCloneContext(executionContext, destination, false, &git.CloneOptions{
		URL:        remoteURL,
		RemoteName: client.remoteName,
		Auth:       client.authentication,
	})
	if cloneError != nil {
		return fmt.Errorf(cloneErrorTemplateConstant, remoteURL, destination, cloneError)
	}
	return nil
}

// Checkout switches the working copy to branch, creating the local branch from its remote counterpart when needed.
// Local modifications are never discarded.
func (client *Client) Checkout(executionContext context.Context, repositoryPath string, branch string) error {
	if validationError := validateRepositoryAndBranch(repositoryPath, branch); validationError != nil {
		return validationError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	repository, worktree, openError := openWorktree(repositoryPath)
	if openError != nil {
		return openError
	}

	localReference := plumbing.NewBranchReferenceName(branch)
	checkoutOptions := &git.CheckoutOptions{Branch: localReference}

	if _, referenceError := repository.Reference(localReference, true); referenceError != nil {
		if !errors.Is(referenceError, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf(checkoutErrorTemplateConstant, branch, repositoryPath, referenceError)
		}
		remoteReference, remoteError := repository.Reference(plumbing.NewRemoteReferenceName(client.remoteName, branch), true)
		if remoteError != nil {
			return fmt.Errorf(checkoutErrorTemplateConstant, branch, repositoryPath, fmt.Errorf(branchNotFoundTemplateConstant, branch, client.remoteName))
		}
		checkoutOptions.Hash = remoteReference.Hash()
		checkoutOptions.Create = true
	}

	if checkoutError := worktree.Checkout(checkoutOptions); checkoutError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, branch, repositoryPath, checkoutError)
	}
	return nil
}

// Pull fast-forwards branch from the remote. An already up-to-date branch is not an error.
func (client *Client) Pull(executionContext context.Context, repositoryPath string, branch string) error {
	if validationError := validateRepositoryAndBranch(repositoryPath, branch); validationError != nil {
		return validationError
	}

	_, worktree, openError := openWorktree(repositoryPath)
	if openError != nil {
		return openError
	}

	pullError := worktree.PullContext(executionContext, &git.PullOptions{
		RemoteName:    client.remoteName,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Auth:          client.authentication,
	})
	if pullError != nil && !errors.Is(pullError, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf(pullErrorTemplateConstant, branch, repositoryPath, pullError)
	}
	return nil
}

func openWorktree(repositoryPath string) (*git.Repository, *git.Worktree, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, nil, fmt.Errorf(openErrorTemplateConstant, repositoryPath, openError)
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return nil, nil, fmt.Errorf(worktreeErrorTemplateConstant, repositoryPath, worktreeError)
	}
	return repository, worktree, nil
}

func validateRepositoryAndBranch(repositoryPath string, branch string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return fmt.Errorf(requiredValueTemplateConstant, repositoryPathFieldNameConstant)
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return fmt.Errorf(requiredValueTemplateConstant, branchFieldNameConstant)
	}
	return nil
}
