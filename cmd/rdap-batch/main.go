package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/raaihank/rdap-sentinel/internal/batch"
	"github.com/raaihank/rdap-sentinel/internal/config"
	"github.com/raaihank/rdap-sentinel/internal/logger"
	"github.com/raaihank/rdap-sentinel/internal/redaction"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Configuration file path")
		inputDir    = flag.String("dir", "", "Directory of RDAP JSON responses")
		outputDir   = flag.String("out", "", "Directory for resolved responses (overrides config)")
		reportPath  = flag.String("report", "", "Report file; the extension selects csv, json or parquet")
		workers     = flag.Int("workers", 0, "Number of worker goroutines (overrides config)")
		watch       = flag.Bool("watch", false, "Keep running and resolve new files as they appear")
		printConfig = flag.Bool("print-config", false, "Print the effective configuration as YAML and exit")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rdap-batch %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *inputDir == "" && !*printConfig {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir responses --out redacted --report report.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir incoming --watch\n", os.Args[0])
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *printConfig {
		data, err := config.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	// Initialize logger
	log, err := logger.New(cfg.Logging.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting RDAP batch redaction",
		zap.String("version", version),
		zap.String("dir", *inputDir),
		zap.Bool("watch", *watch))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	overrides := func(c *config.Config) *batch.Config {
		bc := batchConfig(c)
		if *outputDir != "" {
			bc.OutputDir = *outputDir
		}
		if *workers > 0 {
			bc.Workers = *workers
		}
		return bc
	}

	var engine *redaction.Engine
	if cfg.Redaction.Enabled {
		engine = redaction.New(redaction.Options{
			StrictPathLang: cfg.Redaction.StrictPathLang,
			LogEvents:      cfg.Redaction.LogEvents,
		}, log)
	} else {
		log.Warn("Redaction is disabled in configuration; documents are copied as received")
	}
	pipeline := batch.NewPipeline(engine, overrides(cfg), log.Logger)

	if *watch {
		// Hot-apply batch settings; redaction options need a restart.
		config.Watch(func(newCfg *config.Config) {
			log.Info("Configuration reloaded")
			pipeline.UpdateConfig(overrides(newCfg))
		}, func(err error) {
			log.Warn("Ignoring configuration change", zap.Error(err))
		})

		if err := pipeline.Watch(ctx, *inputDir, func(res *batch.FileResult, err error) {
			if err != nil {
				return
			}
			if *reportPath != "" {
				if err := appendReport(*reportPath, res.Rows); err != nil {
					log.Warn("Failed to update report", zap.Error(err))
				}
			}
		}); err != nil {
			log.Fatal("Watch failed", zap.Error(err))
		}
		log.Info("Watch stopped", zap.Any("stats", pipeline.GetStats()))
		return
	}

	result, err := pipeline.ProcessDir(ctx, *inputDir)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Batch processing failed", zap.Error(err))
	}

	report := *reportPath
	if report == "" {
		report = pipeline.ReportPath()
	}
	if err := pipeline.WriteReport(report, result.Rows); err != nil {
		log.Fatal("Failed to write report", zap.Error(err))
	}

	log.Info("Batch processing completed",
		zap.Int64("total_files", result.TotalFiles),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("applied", result.Applied),
		zap.Duration("total_duration", result.Duration))

	if len(result.Errors) > 0 {
		log.Warn("Processing completed with errors", zap.Strings("errors", result.Errors))
		os.Exit(2)
	}
}

func batchConfig(c *config.Config) *batch.Config {
	return &batch.Config{
		Workers:           c.Batch.Workers,
		MaxFilesPerSecond: c.Batch.MaxFilesPerSecond,
		ReportFormat:      c.Batch.ReportFormat,
		OutputDir:         c.Batch.OutputDir,
		IncludePattern:    c.Batch.IncludePattern,
		Pretty:            c.Output.Format == "pretty",
	}
}

// appendReport rewrites the report with rows added. Parquet files cannot
// be appended to in place, so the whole report is read and written back.
func appendReport(path string, rows []batch.ReportRow) error {
	existing, err := batch.ReadReport(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return batch.WriteReport(path, append(existing, rows...))
}
