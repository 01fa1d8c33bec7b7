package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/orgdump/internal/orgexport"
	"github.com/temirov/orgdump/internal/utils"
)

const (
	applicationNameConstant                 = "orgdump"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Configuration file to load instead of searching ./config.yaml and the user configuration directory."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Log level: debug, info, warn or error."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Log format: structured (JSON) or console (one line per command)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	exportConfigurationKeyConstant          = "export"
	environmentPrefixConstant               = "ORGDUMP"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	workingDirectorySearchPathConstant      = "."
	configurationInitializedMessageConstant = "Configuration loaded"
	logFieldLogLevelConstant                = "log_level"
	logFieldLogFormatConstant               = "log_format"
	logFieldConfigFileConstant              = "config_file"
	logFieldEmbeddedDefaultsConstant        = "embedded_defaults"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
)

// Sync errors reported by terminals and pipes that cannot be fsynced.
var ignorableSyncErrors = []error{syscall.ENOTSUP, syscall.EINVAL, syscall.ENOTTY}

// ApplicationConfiguration mirrors the configuration file layout.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Export orgexport.CommandConfiguration `mapstructure:"export"`
}

// ApplicationCommonConfiguration holds the logging settings.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application owns the root command together with the configuration and loggers it resolves before running.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	consoleLogger         *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication builds the orgdump root command. Configuration is loaded lazily in PersistentPreRunE.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, configurationSearchPaths())
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		consoleLogger:       zap.NewNop(),
	}

	exportBuilder := orgexport.CommandBuilder{
		LoggerProvider:               func() *zap.Logger { return application.logger },
		ConsoleLoggerProvider:        func() *zap.Logger { return application.consoleLogger },
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        func() orgexport.CommandConfiguration { return application.configuration.Export },
	}
	rootCommand, buildError := exportBuilder.Build()
	if buildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, applicationNameConstant, buildError)
	}

	rootCommand.SilenceUsage = true
	rootCommand.SilenceErrors = true
	rootCommand.PersistentPreRunE = func(command *cobra.Command, _ []string) error {
		return application.initializeConfiguration(command)
	}
	rootCommand.SetContext(context.Background())

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	application.rootCommand = rootCommand
	return application, nil
}

// Execute runs the root command and flushes the loggers.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds the application and runs it.
func Execute() error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := orgexport.DefaultConfigurationValues(exportConfigurationKeyConstant)
	defaultValues[commonLogLevelConfigKeyConstant] = string(utils.LogLevelInfo)
	defaultValues[commonLogFormatConfigKeyConstant] = string(utils.LogFormatStructured)

	metadata, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = metadata

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerError)
	}
	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(logFieldLogLevelConstant, application.configuration.Common.LogLevel),
		zap.String(logFieldLogFormatConstant, application.configuration.Common.LogFormat),
		zap.String(logFieldConfigFileConstant, metadata.ConfigFileUsed),
		zap.Bool(logFieldEmbeddedDefaultsConstant, metadata.EmbeddedDefaultsApplied),
	)
	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogFormat), string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if logger == nil {
			continue
		}
		if syncError := logger.Sync(); syncError != nil && !isIgnorableSyncError(syncError) {
			return syncError
		}
	}
	return nil
}

func isIgnorableSyncError(syncError error) bool {
	for _, ignorable := range ignorableSyncErrors {
		if errors.Is(syncError, ignorable) {
			return true
		}
	}
	return false
}

// persistentFlagChanged reports whether a root persistent flag was set, before or after cobra merged it into the command's flag set.
func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	return command.Root().PersistentFlags().Changed(flagName) || command.Flags().Changed(flagName)
}

// configurationSearchPaths lists the working directory, then $XDG_CONFIG_HOME/orgdump or its platform equivalent.
func configurationSearchPaths() []string {
	searchPaths := []string{workingDirectorySearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}
