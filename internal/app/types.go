package app

import (
	"log/slog"

	"wordfreq/internal/config"
	"wordfreq/internal/metrics"
	"wordfreq/internal/report"
)

// State is a Coordinator phase.
type State string

const (
	StateIdle        State = "idle"
	StateSearching   State = "searching"
	StateDraining    State = "draining"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
)

type Options struct {
	Paths      []string
	CWD        string
	ConfigPath string
	// Overrides holds explicitly set flags; they win over env and file.
	Overrides config.Settings
	Format    string
	Version   string
	Args      []string
	Logger    *slog.Logger
	Metrics   *metrics.Run
}

// Settings is the fully resolved configuration of one run.
type Settings struct {
	Extensions       []string
	Jobs             int
	Top              int
	Bottom           int
	MaxFileSizeBytes int64
	IgnorePatterns   []string
	RespectIgnores   bool
	Source           string
}

type Summary struct {
	Roots       int `json:"roots"`
	TotalFiles  int `json:"total_files"`
	Processed   int `json:"processed_files"`
	Skipped     int `json:"skipped_files"`
	Errors      int `json:"error_count"`
	Tokens      int `json:"token_count"`
	UniqueWords int `json:"unique_words"`
}

type Result struct {
	RunID          string
	Settings       Settings
	Events         []map[string]any
	Summary        Summary
	Words          []report.WordCount
	States         []State
	HasInputErr    bool
	HasInternalErr bool
}

// Counts returns the final snapshot as a map.
func (r Result) Counts() map[string]int {
	m := make(map[string]int, len(r.Words))
	for _, w := range r.Words {
		m[w.Key] = w.Count
	}
	return m
}

type ConfigErr struct{ Msg string }

func (e *ConfigErr) Error() string { return e.Msg }

type ArgErr struct{ Msg string }

func (e *ArgErr) Error() string { return e.Msg }
