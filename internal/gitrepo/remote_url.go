package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshPathDelimiterConstant             = ":"
	httpsProtocolPrefixConstant          = "https://"
	gitUserPrefixConstant                = "git@"
	pathSeparatorConstant                = "/"
	gitSuffixConstant                    = ".git"
	remoteURLParseErrorTemplateConstant  = "%s: %s"
	invalidRepositoryNameMessageConstant = "expected owner/repository"
	unknownProtocolMessageConstant       = "unsupported remote protocol"
	defaultRemoteHostConstant            = "github.com"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote could not be interpreted.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// RemoteURLBuilder produces clone URLs for "owner/repository" identifiers.
type RemoteURLBuilder struct {
	Protocol RemoteProtocol
	Host     string
}

// Build formats the clone URL for the provided full repository name.
func (builder RemoteURLBuilder) Build(fullName string) (string, error) {
	owner, repository, found := strings.Cut(strings.TrimSpace(fullName), pathSeparatorConstant)
	if !found || strings.Contains(repository, pathSeparatorConstant) {
		return "", RemoteURLParseError{Input: fullName, Message: invalidRepositoryNameMessageConstant}
	}

	host := strings.TrimSpace(builder.Host)
	if len(host) == 0 {
		host = defaultRemoteHostConstant
	}

	protocol := builder.Protocol
	if len(protocol) == 0 {
		protocol = RemoteProtocolHTTPS
	}

	return FormatRemoteURL(RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository})
}

// FormatRemoteURL creates a textual remote URL from a structured representation.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Owner)) == 0 {
		return "", RemoteURLParseError{Input: remote.Owner, Message: requiredValueMessageConstant}
	}
	repository := strings.TrimSuffix(strings.TrimSpace(remote.Repository), gitSuffixConstant)
	if len(repository) == 0 {
		return "", RemoteURLParseError{Input: remote.Repository, Message: requiredValueMessageConstant}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return gitUserPrefixConstant + remote.Host + sshPathDelimiterConstant + remote.Owner + pathSeparatorConstant + repository + gitSuffixConstant, nil
	case RemoteProtocolHTTPS:
		return httpsProtocolPrefixConstant + remote.Host + pathSeparatorConstant + remote.Owner + pathSeparatorConstant + repository + gitSuffixConstant, nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
