package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/history"
	applog "github.com/appaudit/appaudit/internal/log"
	"github.com/appaudit/appaudit/internal/pipeline"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [xlsx-file...]",
		Short: "Generate privacy reports from a mobility app workbook",
		Long: `Report reads one or more Excel workbooks of mobility applications,
classifies each app into a privacy-risk class, and produces:
- A color-coded HTML table (one row per app, colored by risk)
- A cleaned workbook copy including the derived Risk column
- A Markdown summary with per-class counts
- PNG charts of the risk distribution and per-app counts

Source workbooks can be given as positional arguments or with --excel-in.
When neither is present, mobility_apps.xlsx in the current directory is read.
With multiple sources, each source writes its artifacts into a subdirectory
named after the workbook.

Examples:
  # Report on the default workbook
  appaudit report

  # Report on a specific workbook
  appaudit report --excel-in datasets/q3.xlsx

  # Multiple workbooks, four at a time
  appaudit report a.xlsx b.xlsx c.xlsx --batch 4

  # Only the HTML table
  appaudit report --skip-excel --skip-plots --skip-markdown apps.xlsx

  # Use a custom configuration file
  appaudit report -c myconfig.yaml apps.xlsx

Configuration file (.appaudit) example:
  thresholds:
    tracker_high: 5
    permission_high: 10
  colors:
    high: "#ffd6cf"
  outputs:
    html: reports/apps.html`,
		Args: cobra.ArbitraryArgs,
		RunE: runReportCmd,
	}

	// Source flags
	cmd.Flags().StringArrayP("excel-in", "e", nil,
		"Source workbook path (repeatable)")

	// Artifact destination flags
	cmd.Flags().String("html-out", "",
		"Destination of the HTML table (default "+config.DefaultHTMLPath+")")
	cmd.Flags().String("excel-out", "",
		"Destination of the cleaned workbook (default "+config.DefaultWorkbookPath+")")
	cmd.Flags().String("markdown-out", "",
		"Destination of the Markdown summary (default "+config.DefaultMarkdownPath+")")
	cmd.Flags().String("plots-dir", "",
		"Directory for generated PNG charts (default "+config.DefaultPlotsDir+")")

	// Artifact skip flags
	cmd.Flags().Bool("skip-html", false, "Do not produce the HTML table")
	cmd.Flags().Bool("skip-excel", false, "Do not produce the cleaned workbook")
	cmd.Flags().Bool("skip-plots", false, "Do not produce the PNG charts")
	cmd.Flags().Bool("skip-markdown", false, "Do not produce the Markdown summary")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	// Batch processing flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of workbooks processed concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .appaudit in current or home directory)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	// Build config from the config file and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := applog.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runReport(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and cobra flags.
// Precedence: built-in defaults, then the config file, then explicit flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFilePath

	// Load configuration file overrides.
	// If the user explicitly specified a config file path, error if not
	// found. Otherwise silently run on defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Sources: positional arguments plus repeated --excel-in flags.
	excelIn, err := cmd.Flags().GetStringArray("excel-in")
	if err != nil {
		return nil, err
	}
	if sources := append(append([]string{}, args...), excelIn...); len(sources) > 0 {
		cfg.Sources = sources
	}

	// Destination flags override config file values only when set.
	if htmlOut, err := cmd.Flags().GetString("html-out"); err != nil {
		return nil, err
	} else if htmlOut != "" {
		cfg.HTMLPath = htmlOut
	}
	if excelOut, err := cmd.Flags().GetString("excel-out"); err != nil {
		return nil, err
	} else if excelOut != "" {
		cfg.WorkbookPath = excelOut
	}
	if markdownOut, err := cmd.Flags().GetString("markdown-out"); err != nil {
		return nil, err
	} else if markdownOut != "" {
		cfg.MarkdownPath = markdownOut
	}
	if plotsDir, err := cmd.Flags().GetString("plots-dir"); err != nil {
		return nil, err
	} else if plotsDir != "" {
		cfg.PlotsDir = plotsDir
	}

	cfg.SkipHTML, err = cmd.Flags().GetBool("skip-html")
	if err != nil {
		return nil, err
	}
	cfg.SkipWorkbook, err = cmd.Flags().GetBool("skip-excel")
	if err != nil {
		return nil, err
	}
	cfg.SkipPlots, err = cmd.Flags().GetBool("skip-plots")
	if err != nil {
		return nil, err
	}
	cfg.SkipMarkdown, err = cmd.Flags().GetBool("skip-markdown")
	if err != nil {
		return nil, err
	}

	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Runs are always recorded in the XDG data directory unless disabled.
	cfg.HistoryDir = config.XDGDataDir()

	return cfg, nil
}

// runReport processes every source workbook and reports the outcome.
func runReport(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting report",
		"sources", cfg.Sources,
		"batchSize", cfg.BatchSize,
		"recordHistory", !cfg.NoHistory,
	)

	// Open the history database unless disabled. History is bookkeeping:
	// when the database cannot be opened the report still runs.
	var db *history.DB
	if !cfg.NoHistory {
		var err error
		db, err = history.Open(cfg.HistoryDir, history.DefaultOptions())
		if err != nil {
			logger.Warn("history database unavailable, runs will not be recorded",
				"dir", cfg.HistoryDir,
				"error", err,
			)
		} else {
			defer db.Close()
			logger.Info("history database opened", "dir", cfg.HistoryDir)
		}
	}

	multi := len(cfg.Sources) > 1
	factory := func(source string) *pipeline.Pipeline {
		return buildPipeline(sourceConfig(cfg, source, multi), db, logger)
	}

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(factory, cfg.BatchSize, logger)
	results, err := bp.Process(ctx, cfg.Sources)
	if err != nil {
		return err
	}

	// Print per-source outcomes and collect failures.
	var fatal, failed int
	for _, result := range results {
		run := result.Report

		if result.Err != nil {
			fatal++
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", run.Source, result.Err)
			continue
		}

		fmt.Printf("%s: %d apps (%s)\n",
			run.Source, run.RowCount, formatRiskSummary(run.RiskSummary))
		for _, a := range run.Artifacts {
			switch {
			case a.Failed():
				failed++
				fmt.Printf("  [!] %-8s  %s: %s\n", a.Name, a.Path, a.ErrMessage)
			case a.Skipped:
				fmt.Printf("  [-] %-8s  skipped: %s\n", a.Name, a.Reason)
			default:
				fmt.Printf("  [+] %-8s  %s\n", a.Name, a.Path)
			}
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nReport completed in %s\n", elapsed.Round(time.Millisecond))

	if fatal > 0 {
		return fmt.Errorf("%d of %d workbooks could not be processed", fatal, len(results))
	}
	if failed > 0 {
		return fmt.Errorf("%d artifacts could not be produced", failed)
	}
	return nil
}

// buildPipeline assembles the report pipeline for one source workbook.
// A nil db omits the history step.
func buildPipeline(cfg *config.Config, db *history.DB, logger *slog.Logger) *pipeline.Pipeline {
	caps := pipeline.CapabilitiesFromConfig(cfg)

	p := pipeline.New(pipeline.WithLogger(logger))

	load := pipeline.NewLoadStep(logger)
	p.AddSteps(
		load,
		pipeline.NewNormalizeStep(cfg, logger, load),
		pipeline.NewHTMLStep(cfg, logger, caps),
		pipeline.NewWorkbookStep(cfg, logger, caps),
		pipeline.NewPlotStep(cfg, logger, caps),
		pipeline.NewMarkdownStep(cfg, logger, caps),
	)
	if db != nil {
		p.AddStep(pipeline.NewHistoryStep(db, logger))
	}

	return p
}

// sourceConfig derives the per-source configuration. With multiple
// sources, every artifact path gains a subdirectory named after the
// source workbook so outputs never collide.
func sourceConfig(cfg *config.Config, source string, multi bool) *config.Config {
	perSource := *cfg
	perSource.Sources = []string{source}

	if multi {
		dir := sourceDirName(source)
		perSource.HTMLPath = nestPath(cfg.HTMLPath, dir)
		perSource.WorkbookPath = nestPath(cfg.WorkbookPath, dir)
		perSource.MarkdownPath = nestPath(cfg.MarkdownPath, dir)
		perSource.PlotsDir = nestPath(cfg.PlotsDir, dir)
	}

	return &perSource
}

// nestPath inserts subdir between a path's directory and its last element,
// preserving absolute prefixes.
func nestPath(path, subdir string) string {
	return filepath.Join(filepath.Dir(path), subdir, filepath.Base(path))
}

// sourceDirName derives the artifact subdirectory name from a source
// workbook path by stripping its directory and extension.
func sourceDirName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// formatRiskSummary formats the per-class app counts for display.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "no summary"
	}
	return fmt.Sprintf("low:%d medium:%d high:%d",
		summary["low"], summary["medium"], summary["high"])
}
