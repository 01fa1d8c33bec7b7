package orgexport

import (
	"strings"
	"time"
)

const (
	configurationOrganizationKeyConstant      = "org"
	configurationRootKeyConstant              = "root"
	configurationInterpreterKeyConstant       = "interpreter"
	configurationToolKeyConstant              = "tool"
	configurationOutputKeyConstant            = "output"
	configurationLimitKeyConstant             = "limit"
	configurationFallbackBranchKeyConstant    = "fallback_branch"
	configurationStaticExcludeFileKeyConstant = "static_exclude_file"
	configurationIgnoreFileNameKeyConstant    = "ignore_file_name"
	configurationSkipSubstringKeyConstant     = "skip_substring"
	configurationMaxChunkSizeKeyConstant      = "max_chunk_size"
	configurationCommandTimeoutKeyConstant    = "command_timeout"
	configurationSummaryFileKeyConstant       = "summary_file"
	configurationHostingKeyConstant           = "hosting"
	configurationVersionControlKeyConstant    = "vcs"
	configurationCloneProtocolKeyConstant     = "clone_protocol"
	configurationHostKeyConstant              = "host"
	configurationAPIBaseURLKeyConstant        = "api_base_url"
	configurationTokenEnvironmentKeyConstant  = "token_env"

	defaultOrganizationConstant      = "my-org"
	defaultRepositoryRootConstant    = "~/orgdump/repositories"
	defaultToolPathConstant          = "~/orgdump/dump3.py"
	defaultOutputDirectoryConstant   = "~/orgdump/extracted_texts"
	defaultStaticExcludeFileConstant = "~/orgdump/exclude.txt"
	defaultSkipSubstringConstant     = "data:image"
	defaultMaxChunkSizeConstant      = 10
	defaultListingLimitConstant      = 1000
	defaultHostingBackendConstant    = "cli"
	defaultVersionControlConstant    = "cli"
	defaultCloneProtocolConstant     = "https"
	defaultHostConstant              = "github.com"
	defaultTokenEnvironmentConstant  = "GITHUB_TOKEN"
)

// CommandConfiguration captures configuration values for the export command.
type CommandConfiguration struct {
	Organization             string        `mapstructure:"org"`
	RepositoryRoot           string        `mapstructure:"root"`
	Interpreter              string        `mapstructure:"interpreter"`
	ToolPath                 string        `mapstructure:"tool"`
	OutputDirectory          string        `mapstructure:"output"`
	Limit                    int           `mapstructure:"limit"`
	FallbackBranch           string        `mapstructure:"fallback_branch"`
	StaticExcludeFile        string        `mapstructure:"static_exclude_file"`
	IgnoreFileName           string        `mapstructure:"ignore_file_name"`
	SkipSubstring            string        `mapstructure:"skip_substring"`
	MaxChunkSize             int           `mapstructure:"max_chunk_size"`
	CommandTimeout           time.Duration `mapstructure:"command_timeout"`
	SummaryFile              string        `mapstructure:"summary_file"`
	HostingBackend           string        `mapstructure:"hosting"`
	VersionControlBackend    string        `mapstructure:"vcs"`
	CloneProtocol            string        `mapstructure:"clone_protocol"`
	Host                     string        `mapstructure:"host"`
	APIBaseURL               string        `mapstructure:"api_base_url"`
	TokenEnvironmentVariable string        `mapstructure:"token_env"`
}

// DefaultCommandConfiguration provides baseline configuration values for the export command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Organization:             defaultOrganizationConstant,
		RepositoryRoot:           defaultRepositoryRootConstant,
		Interpreter:              "",
		ToolPath:                 defaultToolPathConstant,
		OutputDirectory:          defaultOutputDirectoryConstant,
		Limit:                    defaultListingLimitConstant,
		FallbackBranch:           defaultFallbackBranchConstant,
		StaticExcludeFile:        defaultStaticExcludeFileConstant,
		IgnoreFileName:           defaultIgnoreFileNameConstant,
		SkipSubstring:            defaultSkipSubstringConstant,
		MaxChunkSize:             defaultMaxChunkSizeConstant,
		CommandTimeout:           0,
		SummaryFile:              "",
		HostingBackend:           defaultHostingBackendConstant,
		VersionControlBackend:    defaultVersionControlConstant,
		CloneProtocol:            defaultCloneProtocolConstant,
		Host:                     defaultHostConstant,
		APIBaseURL:               "",
		TokenEnvironmentVariable: defaultTokenEnvironmentConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the export command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + "."
	return map[string]any{
		prefix + configurationOrganizationKeyConstant:      defaults.Organization,
		prefix + configurationRootKeyConstant:              defaults.RepositoryRoot,
		prefix + configurationInterpreterKeyConstant:       defaults.Interpreter,
		prefix + configurationToolKeyConstant:              defaults.ToolPath,
		prefix + configurationOutputKeyConstant:            defaults.OutputDirectory,
		prefix + configurationLimitKeyConstant:             defaults.Limit,
		prefix + configurationFallbackBranchKeyConstant:    defaults.FallbackBranch,
		prefix + configurationStaticExcludeFileKeyConstant: defaults.StaticExcludeFile,
		prefix + configurationIgnoreFileNameKeyConstant:    defaults.IgnoreFileName,
		prefix + configurationSkipSubstringKeyConstant:     defaults.SkipSubstring,
		prefix + configurationMaxChunkSizeKeyConstant:      defaults.MaxChunkSize,
		prefix + configurationCommandTimeoutKeyConstant:    defaults.CommandTimeout,
		prefix + configurationSummaryFileKeyConstant:       defaults.SummaryFile,
		prefix + configurationHostingKeyConstant:           defaults.HostingBackend,
		prefix + configurationVersionControlKeyConstant:    defaults.VersionControlBackend,
		prefix + configurationCloneProtocolKeyConstant:     defaults.CloneProtocol,
		prefix + configurationHostKeyConstant:              defaults.Host,
		prefix + configurationAPIBaseURLKeyConstant:        defaults.APIBaseURL,
		prefix + configurationTokenEnvironmentKeyConstant:  defaults.TokenEnvironmentVariable,
	}
}

// sanitize trims values and restores defaults for settings that cannot be blank.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()

	sanitized.Organization = strings.TrimSpace(configuration.Organization)
	sanitized.RepositoryRoot = strings.TrimSpace(configuration.RepositoryRoot)
	sanitized.Interpreter = strings.TrimSpace(configuration.Interpreter)
	sanitized.ToolPath = strings.TrimSpace(configuration.ToolPath)
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	sanitized.StaticExcludeFile = strings.TrimSpace(configuration.StaticExcludeFile)
	sanitized.SummaryFile = strings.TrimSpace(configuration.SummaryFile)
	sanitized.APIBaseURL = strings.TrimSpace(configuration.APIBaseURL)
	sanitized.HostingBackend = strings.ToLower(strings.TrimSpace(configuration.HostingBackend))
	sanitized.VersionControlBackend = strings.ToLower(strings.TrimSpace(configuration.VersionControlBackend))
	sanitized.CloneProtocol = strings.ToLower(strings.TrimSpace(configuration.CloneProtocol))

	sanitized.FallbackBranch = valueOrDefault(configuration.FallbackBranch, defaults.FallbackBranch)
	sanitized.IgnoreFileName = valueOrDefault(configuration.IgnoreFileName, defaults.IgnoreFileName)
	sanitized.Host = valueOrDefault(configuration.Host, defaults.Host)
	sanitized.TokenEnvironmentVariable = valueOrDefault(configuration.TokenEnvironmentVariable, defaults.TokenEnvironmentVariable)
	// An empty token matches every line and would empty the output.
	if len(strings.TrimSpace(configuration.SkipSubstring)) == 0 {
		sanitized.SkipSubstring = defaults.SkipSubstring
	}

	if sanitized.Limit <= 0 {
		sanitized.Limit = defaults.Limit
	}
	if sanitized.MaxChunkSize < 0 {
		sanitized.MaxChunkSize = 0
	}
	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}

	return sanitized
}

func valueOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallback
	}
	return trimmed
}
