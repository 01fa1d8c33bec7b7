package orgexport

import (
	"time"
)

// RepositoryState is the furthest step a repository reached during a run.
type RepositoryState string

// Repository states in processing order. StateFailed is terminal and may follow any other state.
const (
	StatePending        RepositoryState = "pending"
	StateParsed         RepositoryState = "parsed"
	StateBranchResolved RepositoryState = "branch_resolved"
	StateSynchronized   RepositoryState = "synchronized"
	StateExported       RepositoryState = "exported"
	StateFailed         RepositoryState = "failed"
)

// RepositoryResult records what happened to one listing line.
type RepositoryResult struct {
	Line           string          `yaml:"line"`
	FullName       string          `yaml:"full_name,omitempty"`
	ShortName      string          `yaml:"short_name,omitempty"`
	State          RepositoryState `yaml:"state"`
	FailedAfter    RepositoryState `yaml:"failed_after,omitempty"`
	Branch         string          `yaml:"branch,omitempty"`
	BranchFallback bool            `yaml:"branch_fallback,omitempty"`
	LocalPath      string          `yaml:"local_path,omitempty"`
	DidClone       bool            `yaml:"cloned,omitempty"`
	OutputFile     string          `yaml:"output_file,omitempty"`
	ExitCode       int             `yaml:"exit_code"`
	ProducedFiles  []string        `yaml:"produced_files,omitempty"`
	Error          string          `yaml:"error,omitempty"`
	Cause          error           `yaml:"-"`
}

// Succeeded reports whether the repository reached the export step.
func (result RepositoryResult) Succeeded() bool {
	return result.State == StateExported
}

func (result *RepositoryResult) fail(cause error) {
	result.FailedAfter = result.State
	result.State = StateFailed
	result.Cause = cause
	if cause != nil {
		result.Error = cause.Error()
	}
}

// SummaryCounts aggregates repository results by outcome.
type SummaryCounts struct {
	Listed       int `yaml:"listed"`
	Exported     int `yaml:"exported"`
	ToolWarnings int `yaml:"tool_warnings"`
	Cloned       int `yaml:"cloned"`
	Updated      int `yaml:"updated"`
	Failed       int `yaml:"failed"`
	Skipped      int `yaml:"skipped"`
}

// RunSummary collects the per-repository results of one run, in listing order.
type RunSummary struct {
	Organization string             `yaml:"organization"`
	StartedAt    time.Time          `yaml:"started_at"`
	FinishedAt   time.Time          `yaml:"finished_at"`
	Interrupted  bool               `yaml:"interrupted,omitempty"`
	Results      []RepositoryResult `yaml:"repositories"`
}

// Counts tallies the results. Lines that could not be parsed count as skipped rather than failed.
func (summary RunSummary) Counts() SummaryCounts {
	counts := SummaryCounts{Listed: len(summary.Results)}
	for _, result := range summary.Results {
		switch result.State {
		case StateExported:
			counts.Exported++
			if result.ExitCode != 0 {
				counts.ToolWarnings++
			}
		case StateFailed:
			if result.FailedAfter == StatePending {
				counts.Skipped++
			} else {
				counts.Failed++
			}
		}
		if result.State == StateExported || result.FailedAfter == StateSynchronized {
			if result.DidClone {
				counts.Cloned++
			} else {
				counts.Updated++
			}
		}
	}
	return counts
}
