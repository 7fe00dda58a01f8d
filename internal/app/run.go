package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wordfreq/internal/config"
	"wordfreq/internal/counter"
	"wordfreq/internal/metrics"
	"wordfreq/internal/queue"
	"wordfreq/internal/report"
	"wordfreq/internal/scan"
)

const fallbackJobs = 4

// DefaultJobs is the processor pool size when none is configured.
func DefaultJobs() int {
	n := runtime.NumCPU()
	if n < 1 {
		return fallbackJobs
	}
	return n
}

// ResolveSettings layers defaults, config file, WFQ_* env and explicit
// overrides, in that order.
func ResolveSettings(configPath string, overrides config.Settings) (Settings, error) {
	fromFile, source, err := config.Resolve(configPath)
	if err != nil {
		return Settings{}, &ConfigErr{Msg: err.Error()}
	}
	if err := overrides.Validate(); err != nil {
		return Settings{}, &ArgErr{Msg: err.Error()}
	}
	merged := config.Merge(fromFile, overrides)

	s := Settings{
		Extensions:     merged.Extensions,
		Jobs:           DefaultJobs(),
		Top:            config.DefaultTop,
		Bottom:         config.DefaultBottom,
		IgnorePatterns: merged.IgnorePatterns,
		Source:         source,
	}
	if len(s.Extensions) == 0 {
		s.Extensions = []string{config.DefaultExtension}
	}
	if len(scan.NormalizeExtensions(s.Extensions)) == 0 {
		return Settings{}, &ArgErr{Msg: fmt.Sprintf("no usable extension in %v", s.Extensions)}
	}
	if merged.Jobs != nil {
		s.Jobs = *merged.Jobs
	}
	if merged.Top != nil {
		s.Top = *merged.Top
	}
	if merged.Bottom != nil {
		s.Bottom = *merged.Bottom
	}
	if merged.RespectIgnores != nil {
		s.RespectIgnores = *merged.RespectIgnores
	}
	size := merged.MaxFileSize
	if strings.TrimSpace(size) == "" {
		size = config.DefaultMaxFileSize
	}
	// zero means no limit
	s.MaxFileSizeBytes, err = config.ParseSizeToBytes(size)
	if err != nil {
		return Settings{}, &ArgErr{Msg: err.Error()}
	}
	return s, nil
}

// Run resolves settings and drives one Coordinator to completion.
func Run(opts Options) (Result, error) {
	settings, err := ResolveSettings(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return Result{}, err
	}
	if opts.CWD == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Result{}, fmt.Errorf("read working directory: %w", err)
		}
		opts.CWD = cwd
	}
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{opts.CWD}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewRun()
	}
	c := NewCoordinator(settings, log, m)
	return c.Run(paths, opts), nil
}

// Coordinator owns the queue and counter of one run. Walkers push onto the
// queue, processors drain it, and the queue is closed only after every
// walker has returned.
type Coordinator struct {
	settings Settings
	log      *slog.Logger
	metrics  *metrics.Run

	queue  *queue.Queue[string]
	counts *counter.Counter[string]
	runLog *runLog
	queued atomic.Int64

	state  State
	states []State
}

func NewCoordinator(settings Settings, log *slog.Logger, m *metrics.Run) *Coordinator {
	return &Coordinator{
		settings: settings,
		log:      log,
		metrics:  m,
		queue:    queue.New[string](),
		counts:   counter.New[string](),
		runLog:   newRunLog(log),
		state:    StateIdle,
		states:   []State{StateIdle},
	}
}

func (c *Coordinator) State() State { return c.state }

func (c *Coordinator) transition(to State) {
	c.log.Debug("coordinator state", "from", string(c.state), "to", string(to))
	c.state = to
	c.states = append(c.states, to)
}

func (c *Coordinator) Run(paths []string, opts Options) Result {
	res := Result{RunID: uuid.NewString(), Settings: c.settings}

	roots, rootErrs := scan.ValidateRoots(paths, opts.CWD)
	for _, se := range rootErrs {
		c.runLog.inputError(se.Code, se.Path, se.Detail)
	}
	walker := scan.NewWalker(scan.Options{
		Extensions:       c.settings.Extensions,
		IgnorePatterns:   c.settings.IgnorePatterns,
		CWD:              opts.CWD,
		DefaultIgnores: c.settings.RespectIgnores,
		GitIgnore:      c.settings.RespectIgnores,
	}, roots)
	c.metrics.Roots.Set(float64(len(roots)))
	c.metrics.Workers.Set(float64(c.settings.Jobs))

	c.transition(StateSearching)
	var workers errgroup.Group
	for i := 0; i < c.settings.Jobs; i++ {
		p := &processor{
			id:       i,
			queue:    c.queue,
			counts:   c.counts,
			maxBytes: c.settings.MaxFileSizeBytes,
			runLog:   c.runLog,
			metrics:  c.metrics,
			log:      c.log,
		}
		workers.Go(func() error {
			p.run()
			return nil
		})
	}

	var walkers errgroup.Group
	for _, root := range roots {
		root := root
		walkers.Go(func() error {
			c.log.Debug("walker started", "root", root)
			return walker.Walk(root, c.enqueue, c.walkError)
		})
	}
	if err := walkers.Wait(); err != nil {
		code := "walker_failed"
		if errors.Is(err, queue.ErrClosed) {
			code = "queue_closed"
		}
		c.runLog.internalError(code, "", err.Error())
	}

	c.transition(StateDraining)
	c.queue.Close()
	_ = workers.Wait()

	c.transition(StateAggregating)
	snapshot := c.counts.Snapshot()
	res.Words = report.Sort(snapshot)
	c.metrics.UniqueWords.Set(float64(len(snapshot)))

	res.Summary = c.runLog.summary()
	res.Summary.Roots = len(roots)
	res.Summary.TotalFiles = int(c.queued.Load())
	res.Summary.Tokens = c.counts.Total()
	res.Summary.UniqueWords = len(snapshot)
	res.HasInputErr = c.runLog.hasInputErr
	res.HasInternalErr = c.runLog.hasInternalErr

	res.Events = append(res.Events, buildMeta(res, roots, opts))
	res.Events = append(res.Events, c.runLog.sortedEvents()...)
	res.Events = append(res.Events, wordEvents("top", report.Top(snapshot, c.settings.Top))...)
	res.Events = append(res.Events, wordEvents("bottom", report.Bottom(snapshot, c.settings.Bottom))...)
	res.Events = append(res.Events, buildSummary(res.Summary, decideExitCode(res)))

	c.transition(StateDone)
	res.States = append([]State(nil), c.states...)
	return res
}

func (c *Coordinator) enqueue(path string) error {
	if err := c.queue.Push(path); err != nil {
		return fmt.Errorf("enqueue %s: %w", path, err)
	}
	c.queued.Add(1)
	c.metrics.FilesQueued.Inc()
	return nil
}

func (c *Coordinator) walkError(se scan.ScanError) {
	c.metrics.WalkErrors.Inc()
	c.runLog.inputError(se.Code, se.Path, se.Detail)
}

// runLog collects events and per-file outcomes from every goroutine.
type runLog struct {
	mu             sync.Mutex
	log            *slog.Logger
	events         []map[string]any
	processed      int
	skipped        int
	hasInputErr    bool
	hasInternalErr bool
}

func newRunLog(log *slog.Logger) *runLog {
	return &runLog{log: log}
}

func (l *runLog) fileDone() {
	l.mu.Lock()
	l.processed++
	l.mu.Unlock()
}

func (l *runLog) fileSkipped(code, path, detail string) {
	l.log.Warn("file skipped", "code", code, "path", path, "detail", detail)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.skipped++
	l.events = append(l.events, buildErrorEvent("input", code, path, detail))
}

func (l *runLog) inputError(code, path, detail string) {
	l.log.Warn("input error", "code", code, "path", path, "detail", detail)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasInputErr = true
	l.events = append(l.events, buildErrorEvent("input", code, path, detail))
}

func (l *runLog) internalError(code, path, detail string) {
	l.log.Error("internal error", "code", code, "path", path, "detail", detail)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasInternalErr = true
	l.events = append(l.events, buildErrorEvent("internal", code, path, detail))
}

func (l *runLog) summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{Processed: l.processed, Skipped: l.skipped, Errors: len(l.events)}
}

// sortedEvents orders events by path then code so output does not depend
// on scheduling.
func (l *runLog) sortedEvents() []map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]map[string]any(nil), l.events...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, _ := out[i]["path"].(string)
		pj, _ := out[j]["path"].(string)
		if pi != pj {
			return pi < pj
		}
		ci, _ := out[i]["code"].(string)
		cj, _ := out[j]["code"].(string)
		return ci < cj
	})
	return out
}

func buildMeta(res Result, roots []string, opts Options) map[string]any {
	s := res.Settings
	return map[string]any{
		"type":             "meta",
		"tool":             "wordfreq",
		"version":          opts.Version,
		"run_id":           res.RunID,
		"cwd":              opts.CWD,
		"args":             opts.Args,
		"roots":            roots,
		"config_path":      s.Source,
		"output_format":    opts.Format,
		"extensions":       s.Extensions,
		"jobs":             s.Jobs,
		"top":              s.Top,
		"bottom":           s.Bottom,
		"follow_symlinks":  false,
		"max_file_size":    s.MaxFileSizeBytes,
		"exit_code_policy": map[string]int{"ok": 0, "arg_error": 2, "input_error": 3, "config_error": 4, "internal_error": 5},
	}
}

func wordEvents(list string, entries []report.WordCount) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for i, e := range entries {
		out = append(out, map[string]any{
			"type":  "word",
			"list":  list,
			"rank":  i + 1,
			"word":  e.Key,
			"count": e.Count,
		})
	}
	return out
}

func buildSummary(s Summary, exitCode int) map[string]any {
	return map[string]any{
		"type":            "summary",
		"roots":           s.Roots,
		"total_files":     s.TotalFiles,
		"processed_files": s.Processed,
		"skipped_files":   s.Skipped,
		"error_count":     s.Errors,
		"token_count":     s.Tokens,
		"unique_words":    s.UniqueWords,
		"exit_code":       exitCode,
	}
}

func decideExitCode(res Result) int {
	if res.HasInternalErr {
		return 5
	}
	if res.HasInputErr {
		return 3
	}
	return 0
}
