package orgexport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/orgdump/internal/repos/shared"
)

const (
	summaryPathRequiredMessageConstant  = "summary file path must be provided"
	summaryEncodeErrorTemplateConstant  = "unable to encode run summary: %w"
	summaryWriteErrorTemplateConstant   = "unable to write run summary %s: %w"
	summaryFilePermissionsConstant      = 0o644
	summaryDirectoryPermissionsConstant = 0o755
)

// ErrSummaryPathRequired indicates the summary file path was blank.
var ErrSummaryPathRequired = errors.New(summaryPathRequiredMessageConstant)

type summaryDocument struct {
	RunSummary `yaml:",inline"`
	Counts     SummaryCounts `yaml:"counts"`
}

// SummaryWriter persists a RunSummary as YAML.
type SummaryWriter struct {
	fileSystem shared.FileSystem
}

// NewSummaryWriter constructs a SummaryWriter.
func NewSummaryWriter(fileSystem shared.FileSystem) (*SummaryWriter, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &SummaryWriter{fileSystem: fileSystem}, nil
}

// Encode renders the summary document, counts included.
func (writer *SummaryWriter) Encode(summary RunSummary) ([]byte, error) {
	encoded, encodeError := yaml.Marshal(summaryDocument{RunSummary: summary, Counts: summary.Counts()})
	if encodeError != nil {
		return nil, fmt.Errorf(summaryEncodeErrorTemplateConstant, encodeError)
	}
	return encoded, nil
}

// Write encodes the summary and stores it at path, creating the parent directory when needed.
func (writer *SummaryWriter) Write(path string, summary RunSummary) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return ErrSummaryPathRequired
	}

	encoded, encodeError := writer.Encode(summary)
	if encodeError != nil {
		return encodeError
	}

	if mkdirError := writer.fileSystem.MkdirAll(filepath.Dir(trimmedPath), summaryDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(summaryWriteErrorTemplateConstant, trimmedPath, mkdirError)
	}
	if writeError := writer.fileSystem.WriteFile(trimmedPath, encoded, summaryFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(summaryWriteErrorTemplateConstant, trimmedPath, writeError)
	}
	return nil
}
