package githubauth

import (
	"os"
	"strings"
)

// Environment variables consulted for a GitHub token after the configured one, in order.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var wellKnownTokenVariables = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup returns the value of an environment variable, or "" when unset.
type EnvironmentLookup func(key string) string

// TokenResolver finds the access token used by the REST listing backend and by go-git over HTTPS.
type TokenResolver struct {
	lookup EnvironmentLookup
}

// NewTokenResolver constructs a resolver. A nil lookup reads the process environment.
func NewTokenResolver(lookup EnvironmentLookup) TokenResolver {
	if lookup == nil {
		lookup = os.Getenv
	}
	return TokenResolver{lookup: lookup}
}

// ResolveToken returns the first non-blank token, checking preferredVariable before the well-known
// GitHub variables, together with the variable it was read from.
func (resolver TokenResolver) ResolveToken(preferredVariable string) (string, string, bool) {
	candidates := make([]string, 0, len(wellKnownTokenVariables)+1)
	if trimmedPreferred := strings.TrimSpace(preferredVariable); len(trimmedPreferred) > 0 {
		candidates = append(candidates, trimmedPreferred)
	}
	candidates = append(candidates, wellKnownTokenVariables...)

	for _, variable := range candidates {
		if value := strings.TrimSpace(resolver.lookup(variable)); len(value) > 0 {
			return value, variable, true
		}
	}
	return "", "", false
}
