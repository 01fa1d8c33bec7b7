package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	pathutils "github.com/temirov/orgdump/internal/utils/path"
)

const (
	configurationKeyNestingSeparatorConstant    = "."
	environmentKeyNestingSeparatorConstant      = "_"
	listValueSeparatorConstant                  = ","
	embeddedMergeErrorTemplateConstant          = "failed to merge embedded configuration: %w"
	configurationFileErrorTemplateConstant      = "failed to read configuration file %s: %v"
	configurationSearchErrorTemplateConstant    = "failed to read configuration: %v"
	configurationUnmarshalErrorTemplateConstant = "failed to parse configuration: %w"
)

// ConfigurationFileError reports a configuration file that exists or was requested but could not be read.
type ConfigurationFileError struct {
	Path  string
	Cause error
}

// Error describes the failing file.
func (fileError ConfigurationFileError) Error() string {
	if len(fileError.Path) == 0 {
		return fmt.Sprintf(configurationSearchErrorTemplateConstant, fileError.Cause)
	}
	return fmt.Sprintf(configurationFileErrorTemplateConstant, fileError.Path, fileError.Cause)
}

// Unwrap exposes the read failure.
func (fileError ConfigurationFileError) Unwrap() error {
	return fileError.Cause
}

// ConfigurationLoader layers configuration sources with Viper. Later layers win:
// embedded defaults, then the first configuration file found on the search
// paths or the explicitly requested file, then PREFIX_SECTION_KEY environment
// variables.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedDocument  []byte
	embeddedType      string
	pathExpander      *pathutils.HomeExpander
}

// LoadedConfiguration records which layers contributed to a load.
type LoadedConfiguration struct {
	ConfigFileUsed          string
	EmbeddedDefaultsApplied bool
}

// NewConfigurationLoader creates a loader for files named configurationName on searchPaths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
		pathExpander:      pathutils.NewHomeExpander(),
	}
}

// SetEmbeddedConfiguration registers a document merged beneath every other source.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(document []byte, documentType string) {
	if loader == nil {
		return
	}
	loader.embeddedType = strings.TrimSpace(documentType)
	loader.embeddedDocument = nil
	if len(document) > 0 {
		loader.embeddedDocument = bytes.Clone(document)
	}
}

// LoadConfiguration decodes the layered configuration into target. An explicit
// configurationFilePath may start with "~" and must exist; search-path files are optional.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)

	loaded := LoadedConfiguration{}
	embeddedApplied, embeddedError := loader.mergeEmbedded(viperInstance)
	if embeddedError != nil {
		return LoadedConfiguration{}, embeddedError
	}
	loaded.EmbeddedDefaultsApplied = embeddedApplied

	viperInstance.SetConfigType(loader.configurationType)
	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeyNestingSeparatorConstant, environmentKeyNestingSeparatorConstant))
	viperInstance.AutomaticEnv()

	requestedPath := strings.TrimSpace(configurationFilePath)
	if len(requestedPath) > 0 {
		requestedPath = loader.pathExpander.Expand(requestedPath)
		viperInstance.SetConfigFile(requestedPath)
	} else {
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(mergeError, &notFoundError) {
			return LoadedConfiguration{}, ConfigurationFileError{Path: requestedPath, Cause: mergeError}
		}
	}
	loaded.ConfigFileUsed = viperInstance.ConfigFileUsed()

	if unmarshalError := viperInstance.Unmarshal(target, viper.DecodeHook(configurationDecodeHook())); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}
	return loaded, nil
}

func (loader *ConfigurationLoader) mergeEmbedded(viperInstance *viper.Viper) (bool, error) {
	if len(loader.embeddedDocument) == 0 {
		return false, nil
	}
	documentType := loader.embeddedType
	if len(documentType) == 0 {
		documentType = loader.configurationType
	}
	viperInstance.SetConfigType(documentType)
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedDocument)); mergeError != nil {
		return false, fmt.Errorf(embeddedMergeErrorTemplateConstant, mergeError)
	}
	return true, nil
}

// configurationDecodeHook accepts "90s" style durations and comma-separated lists.
func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
	)
}
