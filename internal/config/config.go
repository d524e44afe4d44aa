// Package config defines the settings model for the consolidation run and
// a lightweight validator over it.
//
// Settings are intentionally small and JSON-serializable: the commands fill
// them from flags with fixed defaults, and no setting controls algorithmic
// behavior (normalization rules, the drop list and the join key are fixed in
// code). Decoding and validation use only the standard library.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default filesystem locations. Every command accepts overrides by flag, but
// the canonical dataset lives in one fixed place.
const (
	DefaultInputDir = "/scratch/arturxavier/odonto_prescricoes/grouped_year_filtered"
	DefaultDictPath = "/scratch/arturxavier/odonto_prescricoes/analise_geral_medicamentos.csv"
	DefaultOutput   = "/scratch/arturxavier/odonto_prescricoes/prescricoes_all.parquet"
	DefaultJob      = "prescricoes_consolidate"
	UnmatchedReport = "dict_unmatched_por_ano.csv"
	SourceFileGlob  = "grouped_*.csv"
)

// Settings describes one consolidation run.
type Settings struct {
	// InputDir holds the per-year grouped_YYYY.csv extracts.
	InputDir string `json:"input_dir"`
	// DictPath is the substance dictionary (CSV, ';', latin1).
	DictPath string `json:"dict_path"`
	// OutputPath is the consolidated Parquet destination.
	OutputPath string `json:"output_path"`
	// ReportPath is the unmatched-by-year report destination. Empty means
	// a file named UnmatchedReport beside OutputPath.
	ReportPath string `json:"report_path,omitempty"`
	// Job labels metrics for this run.
	Job string `json:"job,omitempty"`
}

// Defaults returns a Settings populated with the canonical locations.
func Defaults() Settings {
	return Settings{
		InputDir:   DefaultInputDir,
		DictPath:   DefaultDictPath,
		OutputPath: DefaultOutput,
		Job:        DefaultJob,
	}
}

// ReportPathOrDefault resolves the unmatched-report destination.
func (s Settings) ReportPathOrDefault() string {
	if s.ReportPath != "" {
		return s.ReportPath
	}
	return filepath.Join(filepath.Dir(s.OutputPath), UnmatchedReport)
}

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates an issue that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates an issue surfaced to users without
	// blocking execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the settings (e.g. "input_dir"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks over the settings. It does not touch the
// filesystem; missing files surface later as fatal run errors with their
// own context.
func Validate(s Settings) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.InputDir) == "" {
		issues = append(issues, Issue{SeverityError, "input_dir", "input directory must not be empty"})
	}
	if strings.TrimSpace(s.DictPath) == "" {
		issues = append(issues, Issue{SeverityError, "dict_path", "dictionary path must not be empty"})
	}
	out := strings.TrimSpace(s.OutputPath)
	switch {
	case out == "":
		issues = append(issues, Issue{SeverityError, "output_path", "output path must not be empty"})
	case filepath.Ext(out) != ".parquet":
		issues = append(issues, Issue{SeverityWarning, "output_path", "output path does not end in .parquet"})
	}
	if strings.TrimSpace(s.Job) == "" {
		issues = append(issues, Issue{SeverityWarning, "job", "empty job label; metrics will use the default"})
	}

	return issues
}

// HasError reports whether any issue is of error severity.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
