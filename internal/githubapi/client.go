package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

const (
	repositoriesPerPageConstant           = 100
	defaultRepositoryLimitConstant        = 1000
	userRepositoryTypeConstant            = "owner"
	listingFieldSeparatorConstant         = "\t"
	repositoryNameSeparatorConstant       = "/"
	trailingSlashConstant                 = "/"
	ownerRequiredMessageConstant          = "owner must be provided"
	repositoryNameInvalidTemplateConstant = "repository %q must be in owner/name form"
	listRepositoriesErrorTemplateConstant = "failed to list repositories for %q: %w"
	getRepositoryErrorTemplateConstant    = "failed to retrieve repository %q: %w"
	baseURLErrorTemplateConstant          = "invalid GitHub API base URL %q: %w"
)

// ErrOwnerRequired indicates the listing owner was blank.
var ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)

// ClientOption customizes a Client during construction.
type ClientOption func(*gh.Client) error

// WithBaseURL points the client at a GitHub Enterprise or test endpoint.
func WithBaseURL(rawBaseURL string) ClientOption {
	return func(client *gh.Client) error {
		normalized := strings.TrimSpace(rawBaseURL)
		if !strings.HasSuffix(normalized, trailingSlashConstant) {
			normalized += trailingSlashConstant
		}
		parsedURL, parseError := url.Parse(normalized)
		if parseError != nil {
			return fmt.Errorf(baseURLErrorTemplateConstant, rawBaseURL, parseError)
		}
		client.BaseURL = parsedURL
		return nil
	}
}

// Client lists repositories and resolves default branches through the GitHub REST API.
type Client struct {
	client *gh.Client
}

// NewClient builds a REST client. An empty token yields unauthenticated access.
func NewClient(httpClient *http.Client, token string, options ...ClientOption) (*Client, error) {
	restClient := gh.NewClient(httpClient)
	if trimmedToken := strings.TrimSpace(token); len(trimmedToken) > 0 {
		restClient = restClient.WithAuthToken(trimmedToken)
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if optionError := option(restClient); optionError != nil {
			return nil, optionError
		}
	}
	return &Client{client: restClient}, nil
}

// ListRepositories returns one "owner/name<TAB>description" line per repository, at most limit lines.
// Owners that are not organizations are listed as user accounts.
func (client *Client) ListRepositories(executionContext context.Context, owner string, limit int) ([]string, error) {
	ownerName := strings.TrimSpace(owner)
	if len(ownerName) == 0 {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = defaultRepositoryLimitConstant
	}

	repositories, listError := client.listOrganizationRepositories(executionContext, ownerName, limit)
	if listError != nil {
		var responseError *gh.ErrorResponse
		if !errors.As(listError, &responseError) || responseError.Response == nil || responseError.Response.StatusCode != http.StatusNotFound {
			return nil, fmt.Errorf(listRepositoriesErrorTemplateConstant, ownerName, listError)
		}
		repositories, listError = client.listUserRepositories(executionContext, ownerName, limit)
		if listError != nil {
			return nil, fmt.Errorf(listRepositoriesErrorTemplateConstant, ownerName, listError)
		}
	}

	listingLines := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		listingLines = append(listingLines, formatListingLine(repository))
	}
	return listingLines, nil
}

// ResolveDefaultBranch returns the default branch of an "owner/name" repository.
func (client *Client) ResolveDefaultBranch(executionContext context.Context, fullName string) (string, error) {
	owner, name, found := strings.Cut(strings.TrimSpace(fullName), repositoryNameSeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 {
		return "", fmt.Errorf(repositoryNameInvalidTemplateConstant, fullName)
	}

	repository, _, getError := client.client.Repositories.Get(executionContext, owner, name)
	if getError != nil {
		return "", fmt.Errorf(getRepositoryErrorTemplateConstant, fullName, getError)
	}
	return strings.TrimSpace(repository.GetDefaultBranch()), nil
}

func (client *Client) listOrganizationRepositories(executionContext context.Context, organization string, limit int) ([]*gh.Repository, error) {
	options := &gh.RepositoryListByOrgOptions{ListOptions: gh.ListOptions{PerPage: repositoriesPerPageConstant}}

	var collected []*gh.Repository
	for {
		page, response, listError := client.client.Repositories.ListByOrg(executionContext, organization, options)
		if listError != nil {
			return nil, listError
		}
		collected = append(collected, page...)
		if len(collected) >= limit {
			return collected[:limit], nil
		}
		if response.NextPage == 0 {
			return collected, nil
		}
		options.Page = response.NextPage
	}
}

func (client *Client) listUserRepositories(executionContext context.Context, user string, limit int) ([]*gh.Repository, error) {
	options := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: repositoriesPerPageConstant},
		Type:        userRepositoryTypeConstant,
	}

	var collected []*gh.Repository
	for {
		page, response, listError := client.client.Repositories.ListByUser(executionContext, user, options)
		if listError != nil {
			return nil, listError
		}
		collected = append(collected, page...)
		if len(collected) >= limit {
			return collected[:limit], nil
		}
		if response.NextPage == 0 {
			return collected, nil
		}
		options.Page = response.NextPage
	}
}

func formatListingLine(repository *gh.Repository) string {
	fullName := repository.GetFullName()
	if len(fullName) == 0 {
		fullName = repository.GetOwner().GetLogin() + repositoryNameSeparatorConstant + repository.GetName()
	}
	description := strings.Join(strings.Fields(repository.GetDescription()), " ")
	return fullName + listingFieldSeparatorConstant + description
}
