package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/raaihank/rdap-sentinel/internal/batch"
	"github.com/raaihank/rdap-sentinel/internal/config"
	"github.com/raaihank/rdap-sentinel/internal/logger"
	"github.com/raaihank/rdap-sentinel/internal/rdap"
	"github.com/raaihank/rdap-sentinel/internal/redaction"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		inputPath   = flag.String("in", "-", "RDAP response to resolve (- for stdin)")
		outputPath  = flag.String("out", "-", "Where to write the resolved response (- for stdout)")
		format      = flag.String("format", "", "Output format: json or pretty (overrides config)")
		reportPath  = flag.String("report", "", "Write the redaction listing to this file (.csv, .json or .parquet)")
		printConfig = flag.Bool("print-config", false, "Print the effective configuration as YAML and exit")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("rdap-redact %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if cfg.Output.Format != "json" && cfg.Output.Format != "pretty" {
		fmt.Fprintf(os.Stderr, "Invalid output format: %s (must be json or pretty)\n", cfg.Output.Format)
		os.Exit(2)
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

	log, err := logger.New(cfg.Logging.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, *inputPath, *outputPath, *reportPath); err != nil {
		log.Error("Failed to resolve document", zap.String("input", *inputPath), zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, inputPath, outputPath, reportPath string) error {
	data, err := readInput(inputPath)
	if err != nil {
		return err
	}

	resp, err := rdap.Decode(data)
	if err != nil {
		return err
	}

	report := &redaction.Report{}
	if cfg.Redaction.Enabled {
		engine := redaction.New(redaction.Options{
			StrictPathLang: cfg.Redaction.StrictPathLang,
			LogEvents:      cfg.Redaction.LogEvents,
		}, log).ForDocument(inputPath)

		resp, report, err = engine.Resolve(resp)
		if err != nil {
			return err
		}
	} else {
		log.Warn("Redaction disabled, writing the response as received")
	}

	out, err := rdap.Encode(resp, cfg.Output.Format == "pretty")
	if err != nil {
		return err
	}
	if err := writeOutput(outputPath, out); err != nil {
		return err
	}

	if reportPath != "" {
		rows := batch.ReportRows(inputPath, resp.Kind(), report)
		if err := batch.WriteReport(reportPath, rows); err != nil {
			return err
		}
	}

	log.Debug("Document written",
		zap.String("kind", string(resp.Kind())),
		zap.Int("declared", report.Declared),
		zap.Int("applied", report.Applied))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
