package orgexport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/execshell"
	"github.com/temirov/orgdump/internal/extractor"
	"github.com/temirov/orgdump/internal/githubauth"
	"github.com/temirov/orgdump/internal/gitrepo"
	"github.com/temirov/orgdump/internal/mirror"
	"github.com/temirov/orgdump/internal/repos/dependencies"
	"github.com/temirov/orgdump/internal/repos/shared"
	"github.com/temirov/orgdump/internal/ui"
	pathutils "github.com/temirov/orgdump/internal/utils/path"
)

const (
	commandUseConstant                    = "orgdump"
	commandShortDescriptionConstant       = "Mirror an organization's repositories and extract their text"
	commandLongDescriptionConstant        = "orgdump lists every repository of an organization, clones or updates a local working copy of its default branch, and runs the text extraction tool against it."
	unexpectedArgumentsMessageConstant    = "orgdump does not accept positional arguments"
	unsupportedCloneProtocolTemplate      = "unsupported clone protocol %q (expected https or ssh)"
	pathResolutionErrorTemplateConstant   = "unable to resolve %s path: %w"
	commandExecutionErrorTemplateConstant = "export failed: %w"
	dependencyErrorTemplateConstant       = "unable to construct %s: %w"
	flagOrganizationNameConstant          = "org"
	flagOrganizationDescriptionConstant   = "Organization whose repositories are exported"
	flagRootNameConstant                  = "root"
	flagRootDescriptionConstant           = "Directory holding the local working copies"
	flagInterpreterNameConstant           = "interpreter"
	flagInterpreterDescriptionConstant    = "Interpreter used to run the extraction tool (default: $PYTHON, python3, python)"
	flagToolNameConstant                  = "tool"
	flagToolDescriptionConstant           = "Path to the extraction tool"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Directory receiving the extracted text files"
	rootPathRoleConstant                  = "repository root"
	outputPathRoleConstant                = "output"
	toolPathRoleConstant                  = "extraction tool"
	staticExcludePathRoleConstant         = "static exclude file"
	summaryPathRoleConstant               = "summary file"
	interpreterPathRoleConstant           = "interpreter"
	executorComponentConstant             = "command executor"
	hostingComponentConstant              = "hosting client"
	versionControlComponentConstant       = "version control client"
	synchronizerComponentConstant         = "synchronizer"
	exporterComponentConstant             = "exporter"
	serviceComponentConstant              = "export service"
	summaryWriterComponentConstant        = "summary writer"
	toolMissingMessageConstant            = "Extraction tool not found; every export will fail"
	summaryWriteFailedMessageConstant     = "Unable to write run summary"
	summaryWrittenMessageConstant         = "Run summary written"
	logFieldToolPathConstant              = "tool_path"
	logFieldSummaryFileConstant           = "summary_file"
	tokenResolvedMessageConstant          = "GitHub token found"
	logFieldTokenSourceConstant           = "token_source"
	completionLineTemplateConstant        = "exported %d of %d repositories (%d failed, %d skipped, %d tool warnings)\n"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the export command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandExecutor              shared.CommandExecutor
	HostingClient                dependencies.HostingClient
	VersionControl               shared.VersionControlClient
	FileSystem                   shared.FileSystem
	Clock                        shared.Clock
	EnvironmentLookup            func(key string) string
	ExecutableLookup             func(file string) (string, error)
	HomeDirectoryProvider        pathutils.HomeDirectoryProvider
}

// Build constructs the export command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagOrganizationNameConstant, "", flagOrganizationDescriptionConstant)
	command.Flags().String(flagRootNameConstant, "", flagRootDescriptionConstant)
	command.Flags().String(flagInterpreterNameConstant, "", flagInterpreterDescriptionConstant)
	command.Flags().String(flagToolNameConstant, "", flagToolDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.applyFlagOverrides(command, builder.resolveConfiguration())
	if len(configuration.Organization) == 0 {
		return ErrOrganizationRequired
	}

	logger := resolveLogger(builder.LoggerProvider)
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	paths, pathsError := builder.resolvePaths(configuration)
	if pathsError != nil {
		return pathsError
	}

	interpreterResolver := extractor.NewInterpreterResolver()
	if builder.EnvironmentLookup != nil {
		interpreterResolver.Getenv = builder.EnvironmentLookup
	}
	if builder.ExecutableLookup != nil {
		interpreterResolver.LookPath = builder.ExecutableLookup
	}
	interpreter, interpreterError := interpreterResolver.Resolve(paths.expander.Expand(configuration.Interpreter))
	if interpreterError != nil {
		return interpreterError
	}
	// The tool runs inside each working copy; relative interpreter paths resolve against the invocation directory.
	if strings.ContainsRune(interpreter, '/') || strings.ContainsRune(interpreter, filepath.Separator) {
		absoluteInterpreter, absoluteError := paths.expander.ResolveAbsolute(interpreter)
		if absoluteError != nil {
			return fmt.Errorf(pathResolutionErrorTemplateConstant, interpreterPathRoleConstant, absoluteError)
		}
		interpreter = absoluteInterpreter
	}

	hostingBackend, hostingBackendError := shared.ParseHostingBackend(configuration.HostingBackend)
	if hostingBackendError != nil {
		return hostingBackendError
	}
	versionControlBackend, versionControlBackendError := shared.ParseVersionControlBackend(configuration.VersionControlBackend)
	if versionControlBackendError != nil {
		return versionControlBackendError
	}
	cloneProtocol, protocolError := parseCloneProtocol(configuration.CloneProtocol)
	if protocolError != nil {
		return protocolError
	}

	token, tokenSource, tokenFound := githubauth.NewTokenResolver(builder.EnvironmentLookup).ResolveToken(configuration.TokenEnvironmentVariable)
	if tokenFound {
		logger.Debug(tokenResolvedMessageConstant, zap.String(logFieldTokenSourceConstant, tokenSource))
	}

	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, builder.resolveCommandObserver(), configuration.CommandTimeout)
	if executorError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, executorComponentConstant, executorError)
	}

	hostingClient, hostingError := dependencies.ResolveHostingClient(builder.HostingClient, dependencies.HostingSettings{
		Backend:    hostingBackend,
		Token:      token,
		APIBaseURL: configuration.APIBaseURL,
	}, commandExecutor)
	if hostingError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, hostingComponentConstant, hostingError)
	}

	versionControl, versionControlError := dependencies.ResolveVersionControlClient(builder.VersionControl, dependencies.VersionControlSettings{
		Backend: versionControlBackend,
		Token:   token,
	}, commandExecutor)
	if versionControlError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, versionControlComponentConstant, versionControlError)
	}

	synchronizer, synchronizerError := mirror.NewSynchronizer(mirror.Dependencies{
		VersionControl: versionControl,
		RemoteURLs:     gitrepo.RemoteURLBuilder{Protocol: cloneProtocol, Host: configuration.Host},
		FileSystem:     fileSystem,
		Logger:         logger,
	})
	if synchronizerError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, synchronizerComponentConstant, synchronizerError)
	}

	if _, toolStatError := fileSystem.Stat(paths.tool); toolStatError != nil {
		logger.Warn(toolMissingMessageConstant, zap.String(logFieldToolPathConstant, paths.tool), zap.Error(toolStatError))
	}

	exporter, exporterError := extractor.NewInvoker(extractor.Dependencies{
		Executor:   commandExecutor,
		FileSystem: fileSystem,
		Logger:     logger,
	}, extractor.Tool{Interpreter: interpreter, ScriptPath: paths.tool})
	if exporterError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, exporterComponentConstant, exporterError)
	}

	service, serviceError := NewService(Dependencies{
		Lister:         hostingClient,
		BranchResolver: NewDefaultBranchResolver(hostingClient, configuration.FallbackBranch, logger),
		Synchronizer:   synchronizer,
		Exporter:       exporter,
		FileSystem:     fileSystem,
		Clock:          builder.Clock,
		Logger:         logger,
	})
	if serviceError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, serviceComponentConstant, serviceError)
	}

	summary, runError := service.Run(command.Context(), Options{
		Organization:      configuration.Organization,
		Limit:             configuration.Limit,
		RootDirectory:     paths.root,
		OutputDirectory:   paths.output,
		StaticExcludeFile: paths.staticExclude,
		IgnoreFileName:    configuration.IgnoreFileName,
		SkipSubstring:     configuration.SkipSubstring,
		MaxChunkSize:      configuration.MaxChunkSize,
	})
	if len(paths.summary) > 0 && len(summary.Results) > 0 {
		builder.writeSummary(logger, fileSystem, paths.summary, summary)
	}
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	counts := summary.Counts()
	fmt.Fprintf(command.OutOrStdout(), completionLineTemplateConstant, counts.Exported, counts.Listed, counts.Failed, counts.Skipped, counts.ToolWarnings)
	return nil
}

type resolvedPaths struct {
	expander      *pathutils.HomeExpander
	root          string
	output        string
	tool          string
	staticExclude string
	summary       string
}

func (builder *CommandBuilder) resolvePaths(configuration CommandConfiguration) (resolvedPaths, error) {
	paths := resolvedPaths{expander: pathutils.NewHomeExpanderWithProvider(builder.HomeDirectoryProvider)}

	for _, target := range []struct {
		role        string
		value       string
		destination *string
		optional    bool
	}{
		{role: rootPathRoleConstant, value: configuration.RepositoryRoot, destination: &paths.root},
		{role: outputPathRoleConstant, value: configuration.OutputDirectory, destination: &paths.output},
		{role: toolPathRoleConstant, value: configuration.ToolPath, destination: &paths.tool},
		{role: staticExcludePathRoleConstant, value: configuration.StaticExcludeFile, destination: &paths.staticExclude, optional: true},
		{role: summaryPathRoleConstant, value: configuration.SummaryFile, destination: &paths.summary, optional: true},
	} {
		if target.optional && len(target.value) == 0 {
			continue
		}
		resolved, resolveError := paths.expander.ResolveAbsolute(target.value)
		if resolveError != nil {
			return resolvedPaths{}, fmt.Errorf(pathResolutionErrorTemplateConstant, target.role, resolveError)
		}
		*target.destination = resolved
	}

	return paths, nil
}

func (builder *CommandBuilder) writeSummary(logger *zap.Logger, fileSystem shared.FileSystem, path string, summary RunSummary) {
	writer, writerError := NewSummaryWriter(fileSystem)
	if writerError != nil {
		logger.Warn(summaryWriteFailedMessageConstant, zap.String(logFieldSummaryFileConstant, path), zap.Error(fmt.Errorf(dependencyErrorTemplateConstant, summaryWriterComponentConstant, writerError)))
		return
	}
	if writeError := writer.Write(path, summary); writeError != nil {
		logger.Warn(summaryWriteFailedMessageConstant, zap.String(logFieldSummaryFileConstant, path), zap.Error(writeError))
		return
	}
	logger.Info(summaryWrittenMessageConstant, zap.String(logFieldSummaryFileConstant, path))
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	if command == nil {
		return configuration
	}

	overridden := configuration
	destinations := map[string]*string{
		flagOrganizationNameConstant: &overridden.Organization,
		flagRootNameConstant:         &overridden.RepositoryRoot,
		flagInterpreterNameConstant:  &overridden.Interpreter,
		flagToolNameConstant:         &overridden.ToolPath,
		flagOutputNameConstant:       &overridden.OutputDirectory,
	}
	command.Flags().Visit(func(changedFlag *pflag.Flag) {
		if destination, known := destinations[changedFlag.Name]; known {
			*destination = changedFlag.Value.String()
		}
	})

	return overridden.sanitize()
}

func (builder *CommandBuilder) resolveCommandObserver() execshell.CommandEventObserver {
	if builder.HumanReadableLoggingProvider == nil || !builder.HumanReadableLoggingProvider() {
		return nil
	}
	return ui.NewConsoleCommandEventLogger(resolveLogger(builder.ConsoleLoggerProvider))
}

func parseCloneProtocol(raw string) (gitrepo.RemoteProtocol, error) {
	switch gitrepo.RemoteProtocol(raw) {
	case "", gitrepo.RemoteProtocolHTTPS:
		return gitrepo.RemoteProtocolHTTPS, nil
	case gitrepo.RemoteProtocolSSH:
		return gitrepo.RemoteProtocolSSH, nil
	default:
		return "", fmt.Errorf(unsupportedCloneProtocolTemplate, raw)
	}
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
