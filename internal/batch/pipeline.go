// Package batch resolves directories of RDAP documents with a shared
// redaction engine and exports what was done as a report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/raaihank/rdap-sentinel/internal/rdap"
	"github.com/raaihank/rdap-sentinel/internal/redaction"
)

// Pipeline resolves RDAP documents found on disk
type Pipeline struct {
	engine  *redaction.Engine
	config  *Config
	limiter *rate.Limiter
	logger  *zap.Logger
	stats   *ProcessingStats
	mu      sync.RWMutex
}

// NewPipeline creates a new batch pipeline. A nil engine copies documents
// through unresolved.
func NewPipeline(engine *redaction.Engine, config *Config, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		engine: engine,
		logger: logger,
		stats: &ProcessingStats{
			StartTime: time.Now(),
		},
	}
	p.UpdateConfig(config)
	return p
}

// UpdateConfig swaps in new settings. Files already in flight finish with
// the settings they started with.
func (p *Pipeline) UpdateConfig(config *Config) {
	cfg := *config
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.IncludePattern == "" {
		cfg.IncludePattern = "*.json"
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = string(FormatCSV)
	}

	var limiter *rate.Limiter
	if cfg.MaxFilesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxFilesPerSecond), 1)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = &cfg
	p.limiter = limiter

	p.logger.Info("Batch configuration applied",
		zap.Int("workers", cfg.Workers),
		zap.Float64("max_files_per_second", cfg.MaxFilesPerSecond),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("include_pattern", cfg.IncludePattern),
		zap.String("report_format", cfg.ReportFormat))
}

// ReportPath is the default report location: report.<format> in the
// output directory.
func (p *Pipeline) ReportPath() string {
	cfg, _ := p.settings()
	return filepath.Join(cfg.OutputDir, "report."+cfg.ReportFormat)
}

func (p *Pipeline) settings() (*Config, *rate.Limiter) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config, p.limiter
}

// ProcessDir resolves every matching file in dir. A file that cannot be
// decoded or resolved is recorded as failed; it never aborts the run.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string) (*ProcessingResult, error) {
	cfg, limiter := p.settings()
	if err := checkDirs(dir, cfg.OutputDir); err != nil {
		return nil, err
	}

	files, err := listFiles(dir, cfg.IncludePattern)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	p.logger.Info("Starting batch pipeline",
		zap.String("run_id", runID),
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int("workers", cfg.Workers))

	start := time.Now()
	p.resetStats()

	type outcome struct {
		res *FileResult
		err error
	}
	outcomes := make([]outcome, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						outcomes[i] = outcome{err: err}
						continue
					}
				}
				res, err := p.ProcessFile(ctx, files[i])
				outcomes[i] = outcome{res: res, err: err}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	result := &ProcessingResult{RunID: runID, TotalFiles: int64(len(files))}
	for i, o := range outcomes {
		switch {
		case o.err != nil:
			result.ProcessedFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", files[i], o.err))
			result.Rows = append(result.Rows, ReportRow{File: files[i], Index: -1, Error: o.err.Error()})
		case o.res != nil:
			result.ProcessedOK++
			result.Applied += int64(o.res.Applied)
			result.Declarations += int64(len(o.res.Rows))
			result.Rows = append(result.Rows, o.res.Rows...)
		default:
			// never dispatched: the context ended first
			result.ProcessedFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", files[i], ctx.Err()))
			result.Rows = append(result.Rows, ReportRow{File: files[i], Index: -1, Error: ctx.Err().Error()})
		}
	}
	result.Duration = time.Since(start)

	p.logger.Info("Batch pipeline completed",
		zap.String("run_id", result.RunID),
		zap.Int64("total_files", result.TotalFiles),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("applied", result.Applied),
		zap.Duration("total_duration", result.Duration))

	return result, ctx.Err()
}

// ProcessFile decodes, resolves and writes one document. The output is
// written to a temporary file in the output directory and moved into
// place only once it is complete.
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, _ := p.settings()
	start := time.Now()
	name := filepath.Base(filePath)
	p.updateStats(func(s *ProcessingStats) { s.FilesRead++ })

	fail := func(err error) (*FileResult, error) {
		p.updateStats(func(s *ProcessingStats) { s.FilesFailed++ })
		p.logger.Warn("Failed to process document", zap.String("file", filePath), zap.Error(err))
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fail(fmt.Errorf("failed to read document: %w", err))
	}
	resp, err := rdap.Decode(data)
	if err != nil {
		return fail(err)
	}

	resolved, report := resp, &redaction.Report{}
	if p.engine != nil {
		resolved, report, err = p.engine.ForDocument(name).Resolve(resp)
		if err != nil {
			return fail(fmt.Errorf("failed to resolve redactions: %w", err))
		}
	}

	out, err := rdap.Encode(resolved, cfg.Pretty)
	if err != nil {
		return fail(err)
	}
	outPath := filepath.Join(cfg.OutputDir, name)
	if err := writeAtomic(outPath, out); err != nil {
		return fail(err)
	}

	result := &FileResult{
		Path:       filePath,
		OutputPath: outPath,
		Kind:       string(resp.Kind()),
		Applied:    report.Applied,
		Events:     len(report.Events),
		Duration:   time.Since(start),
		Rows:       ReportRows(filePath, resp.Kind(), report),
	}

	p.updateStats(func(s *ProcessingStats) {
		s.FilesResolved++
		s.Declarations += int64(report.Declared)
		s.Applied += int64(report.Applied)
	})
	p.logger.Debug("Document resolved",
		zap.String("file", filePath),
		zap.String("kind", result.Kind),
		zap.Int("applied", result.Applied),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// Watch resolves matching files as they are created or rewritten in dir
// until ctx ends. onResult, if set, sees every outcome.
func (p *Pipeline) Watch(ctx context.Context, dir string, onResult func(*FileResult, error)) error {
	cfg, _ := p.settings()
	if err := checkDirs(dir, cfg.OutputDir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	p.logger.Info("Watching for documents", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("Watcher error", zap.Error(err))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			cfg, limiter := p.settings()
			if match, _ := filepath.Match(cfg.IncludePattern, filepath.Base(ev.Name)); !match {
				continue
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			res, err := p.ProcessFile(ctx, ev.Name)
			if onResult != nil {
				onResult(res, err)
			}
		}
	}
}

// ReportRows lists what was done with each declaration of one document.
func ReportRows(file string, kind rdap.Kind, report *redaction.Report) []ReportRow {
	rows := make([]ReportRow, 0, report.Declared)
	for _, e := range report.Entries {
		rows = append(rows, ReportRow{
			File:    file,
			Kind:    string(kind),
			Index:   int64(e.Index),
			Name:    e.Name,
			Reason:  e.Reason,
			Method:  e.Method,
			Path:    e.Path,
			Matches: int64(e.Matches),
			Action:  e.Action.String(),
		})
	}
	for _, ev := range report.Events {
		if ev.Kind == redaction.EventExtractError {
			rows = append(rows, ReportRow{
				File:   file,
				Kind:   string(kind),
				Index:  int64(ev.Descriptor),
				Action: redaction.NoAction.String(),
				Error:  ev.Message,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })
	return rows
}

func listFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		if match {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// checkDirs refuses an output directory equal to the input directory,
// which would make watch mode resolve its own output.
func checkDirs(dir, outDir string) error {
	if outDir == "" {
		return errors.New("output directory is not set")
	}
	in, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if in == out {
		return fmt.Errorf("output directory %s must differ from input directory", outDir)
	}
	return os.MkdirAll(out, 0o755)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rdap-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

func (p *Pipeline) updateStats(fn func(*ProcessingStats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.stats)
	if elapsed := time.Since(p.stats.StartTime).Seconds(); elapsed > 0 {
		p.stats.ProcessingRate = float64(p.stats.FilesResolved) / elapsed
	}
}

// resetStats resets processing statistics
func (p *Pipeline) resetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats = &ProcessingStats{
		StartTime: time.Now(),
	}
}

// GetStats returns current processing statistics
func (p *Pipeline) GetStats() *ProcessingStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	// Create a copy
	stats := *p.stats
	return &stats
}
