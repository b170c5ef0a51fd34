package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/appaudit/appaudit/internal/artifact"
	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/dataset"
	"github.com/appaudit/appaudit/internal/history"
	"github.com/appaudit/appaudit/internal/model"
	"github.com/appaudit/appaudit/internal/plot"
	"github.com/appaudit/appaudit/internal/render"
)

// CapabilitiesFromConfig derives the artifact capabilities from the skip
// flags on the configuration.
func CapabilitiesFromConfig(cfg *config.Config) artifact.Capabilities {
	return artifact.Capabilities{
		HTML:     !cfg.SkipHTML,
		Workbook: !cfg.SkipWorkbook,
		Plots:    !cfg.SkipPlots,
		Markdown: !cfg.SkipMarkdown,
	}
}

// LoadStep reads the source workbook into a raw table.
// A load failure is fatal for the run: nothing downstream can proceed
// without the raw sheet.
type LoadStep struct {
	logger *slog.Logger

	// Raw holds the loaded sheet after Do succeeds. The normalize step
	// consumes it; it never appears on the run report because raw rows
	// are an ingestion detail, not a run outcome.
	Raw *dataset.RawTable
}

// NewLoadStep creates a LoadStep.
func NewLoadStep(logger *slog.Logger) *LoadStep {
	return &LoadStep{logger: logger}
}

// Name returns the step name for logging.
func (s *LoadStep) Name() string { return "load" }

// Do reads the workbook at run.Source.
func (s *LoadStep) Do(ctx context.Context, run *model.RunReport) error {
	raw, err := dataset.Load(run.Source)
	if err != nil {
		return fmt.Errorf("load %s: %w", run.Source, err)
	}

	s.logger.InfoContext(ctx, "workbook loaded",
		"source", run.Source,
		"sheet", raw.Sheet,
		"rows", len(raw.Rows),
	)
	s.Raw = raw
	return nil
}

// NormalizeStep converts the raw sheet into the normalized table and
// records the row count and risk summary on the run. Like loading,
// normalization failures are fatal: a schema mismatch means every
// artifact would be built from garbage.
type NormalizeStep struct {
	cfg    *config.Config
	logger *slog.Logger
	load   *LoadStep
}

// NewNormalizeStep creates a NormalizeStep consuming the given load step.
func NewNormalizeStep(cfg *config.Config, logger *slog.Logger, load *LoadStep) *NormalizeStep {
	return &NormalizeStep{cfg: cfg, logger: logger, load: load}
}

// Name returns the step name for logging.
func (s *NormalizeStep) Name() string { return "normalize" }

// Do normalizes the raw table loaded by the load step.
func (s *NormalizeStep) Do(ctx context.Context, run *model.RunReport) error {
	if s.load.Raw == nil {
		return fmt.Errorf("normalize %s: no raw table loaded", run.Source)
	}

	table, err := dataset.NewNormalizer(s.cfg, s.logger).Normalize(s.load.Raw)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", run.Source, err)
	}

	run.Table = table
	run.RowCount = len(table.Rows)
	run.RiskSummary = table.RiskSummary()

	s.logger.InfoContext(ctx, "dataset normalized",
		"source", run.Source,
		"rows", run.RowCount,
		"risk_summary", run.RiskSummary,
	)
	return nil
}

// HTMLStep renders the styled HTML table and writes it to disk.
//
// Artifact steps record their outcome on the run and return nil even on
// failure: one broken artifact must not prevent the others from being
// attempted. The caller inspects RunReport.FailedArtifacts to decide the
// exit status.
type HTMLStep struct {
	cfg    *config.Config
	logger *slog.Logger
	caps   artifact.Capabilities
	writer *artifact.Writer
}

// NewHTMLStep creates an HTMLStep gated on the given capabilities.
func NewHTMLStep(cfg *config.Config, logger *slog.Logger, caps artifact.Capabilities) *HTMLStep {
	return &HTMLStep{cfg: cfg, logger: logger, caps: caps, writer: artifact.NewWriter()}
}

// Name returns the step name for logging.
func (s *HTMLStep) Name() string { return "html" }

// Do renders and writes the HTML artifact.
func (s *HTMLStep) Do(ctx context.Context, run *model.RunReport) error {
	if !s.caps.HTML {
		run.AddArtifact(model.ArtifactResult{
			Name:    model.ArtifactHTML,
			Path:    s.cfg.HTMLPath,
			Skipped: true,
			Reason:  "disabled by --skip-html",
		})
		return nil
	}

	data, err := render.NewHTMLRenderer(s.cfg).Render(run.Table)
	if err == nil {
		err = s.writer.Write(s.cfg.HTMLPath, data)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "html artifact failed",
			"source", run.Source,
			"path", s.cfg.HTMLPath,
			"error", err,
		)
		run.AddArtifact(model.ArtifactResult{
			Name: model.ArtifactHTML,
			Path: s.cfg.HTMLPath,
			Err:  err,
		})
		return nil
	}

	s.logger.InfoContext(ctx, "html artifact written",
		"source", run.Source,
		"path", s.cfg.HTMLPath,
		"bytes", len(data),
	)
	run.AddArtifact(model.ArtifactResult{
		Name:    model.ArtifactHTML,
		Path:    s.cfg.HTMLPath,
		Written: true,
	})
	return nil
}

// WorkbookStep renders the cleaned workbook copy and writes it to disk.
type WorkbookStep struct {
	cfg    *config.Config
	logger *slog.Logger
	caps   artifact.Capabilities
	writer *artifact.Writer
}

// NewWorkbookStep creates a WorkbookStep gated on the given capabilities.
func NewWorkbookStep(cfg *config.Config, logger *slog.Logger, caps artifact.Capabilities) *WorkbookStep {
	return &WorkbookStep{cfg: cfg, logger: logger, caps: caps, writer: artifact.NewWriter()}
}

// Name returns the step name for logging.
func (s *WorkbookStep) Name() string { return "workbook" }

// Do renders and writes the cleaned workbook artifact.
func (s *WorkbookStep) Do(ctx context.Context, run *model.RunReport) error {
	if !s.caps.Workbook {
		run.AddArtifact(model.ArtifactResult{
			Name:    model.ArtifactWorkbook,
			Path:    s.cfg.WorkbookPath,
			Skipped: true,
			Reason:  "disabled by --skip-excel",
		})
		return nil
	}

	data, err := render.NewWorkbookRenderer(s.cfg).Render(run.Table)
	if err == nil {
		err = s.writer.Write(s.cfg.WorkbookPath, data)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "workbook artifact failed",
			"source", run.Source,
			"path", s.cfg.WorkbookPath,
			"error", err,
		)
		run.AddArtifact(model.ArtifactResult{
			Name: model.ArtifactWorkbook,
			Path: s.cfg.WorkbookPath,
			Err:  err,
		})
		return nil
	}

	s.logger.InfoContext(ctx, "workbook artifact written",
		"source", run.Source,
		"path", s.cfg.WorkbookPath,
		"bytes", len(data),
	)
	run.AddArtifact(model.ArtifactResult{
		Name:    model.ArtifactWorkbook,
		Path:    s.cfg.WorkbookPath,
		Written: true,
	})
	return nil
}

// PlotStep renders the PNG charts into the plots directory.
// An empty dataset is a reported condition, not a failure: the step
// records a skip and the run continues.
type PlotStep struct {
	cfg    *config.Config
	logger *slog.Logger
	caps   artifact.Capabilities
	writer *artifact.Writer
}

// NewPlotStep creates a PlotStep gated on the given capabilities.
func NewPlotStep(cfg *config.Config, logger *slog.Logger, caps artifact.Capabilities) *PlotStep {
	return &PlotStep{cfg: cfg, logger: logger, caps: caps, writer: artifact.NewWriter()}
}

// Name returns the step name for logging.
func (s *PlotStep) Name() string { return "plots" }

// Do renders and writes the chart artifacts.
func (s *PlotStep) Do(ctx context.Context, run *model.RunReport) error {
	if !s.caps.Plots {
		run.AddArtifact(model.ArtifactResult{
			Name:    model.ArtifactPlots,
			Path:    s.cfg.PlotsDir,
			Skipped: true,
			Reason:  "disabled by --skip-plots",
		})
		return nil
	}

	charts, err := plot.NewPlotter(s.cfg).Render(run.Table)
	if err != nil {
		if errors.Is(err, plot.ErrEmptyDataset) {
			s.logger.WarnContext(ctx, "plots skipped",
				"source", run.Source,
				"reason", err,
			)
			run.AddArtifact(model.ArtifactResult{
				Name:    model.ArtifactPlots,
				Path:    s.cfg.PlotsDir,
				Skipped: true,
				Reason:  "empty dataset: nothing to aggregate",
			})
			return nil
		}
		s.logger.ErrorContext(ctx, "plot artifact failed",
			"source", run.Source,
			"dir", s.cfg.PlotsDir,
			"error", err,
		)
		run.AddArtifact(model.ArtifactResult{
			Name: model.ArtifactPlots,
			Path: s.cfg.PlotsDir,
			Err:  err,
		})
		return nil
	}

	files := make(map[string][]byte, len(charts))
	for _, c := range charts {
		files[c.Filename] = c.PNG
	}
	if err := s.writer.WriteAll(s.cfg.PlotsDir, files); err != nil {
		s.logger.ErrorContext(ctx, "plot artifact failed",
			"source", run.Source,
			"dir", s.cfg.PlotsDir,
			"error", err,
		)
		run.AddArtifact(model.ArtifactResult{
			Name: model.ArtifactPlots,
			Path: s.cfg.PlotsDir,
			Err:  err,
		})
		return nil
	}

	s.logger.InfoContext(ctx, "plot artifacts written",
		"source", run.Source,
		"dir", s.cfg.PlotsDir,
		"charts", len(charts),
	)
	run.AddArtifact(model.ArtifactResult{
		Name:    model.ArtifactPlots,
		Path:    s.cfg.PlotsDir,
		Written: true,
	})
	return nil
}

// MarkdownStep renders the Markdown summary report and writes it to disk.
type MarkdownStep struct {
	cfg    *config.Config
	logger *slog.Logger
	caps   artifact.Capabilities
	writer *artifact.Writer
}

// NewMarkdownStep creates a MarkdownStep gated on the given capabilities.
func NewMarkdownStep(cfg *config.Config, logger *slog.Logger, caps artifact.Capabilities) *MarkdownStep {
	return &MarkdownStep{cfg: cfg, logger: logger, caps: caps, writer: artifact.NewWriter()}
}

// Name returns the step name for logging.
func (s *MarkdownStep) Name() string { return "markdown" }

// Do renders and writes the Markdown artifact.
func (s *MarkdownStep) Do(ctx context.Context, run *model.RunReport) error {
	if !s.caps.Markdown {
		run.AddArtifact(model.ArtifactResult{
			Name:    model.ArtifactMarkdown,
			Path:    s.cfg.MarkdownPath,
			Skipped: true,
			Reason:  "disabled by --skip-markdown",
		})
		return nil
	}

	data, err := render.NewMarkdownRenderer(s.cfg).Render(run.Table)
	if err == nil {
		err = s.writer.Write(s.cfg.MarkdownPath, data)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "markdown artifact failed",
			"source", run.Source,
			"path", s.cfg.MarkdownPath,
			"error", err,
		)
		run.AddArtifact(model.ArtifactResult{
			Name: model.ArtifactMarkdown,
			Path: s.cfg.MarkdownPath,
			Err:  err,
		})
		return nil
	}

	s.logger.InfoContext(ctx, "markdown artifact written",
		"source", run.Source,
		"path", s.cfg.MarkdownPath,
		"bytes", len(data),
	)
	run.AddArtifact(model.ArtifactResult{
		Name:    model.ArtifactMarkdown,
		Path:    s.cfg.MarkdownPath,
		Written: true,
	})
	return nil
}

// HistoryStep records the completed run in the history database.
// History is bookkeeping: a failure to record is logged and swallowed so
// the artifacts already on disk still count as a successful run.
type HistoryStep struct {
	db     *history.DB
	logger *slog.Logger
}

// NewHistoryStep creates a HistoryStep writing to the given database.
func NewHistoryStep(db *history.DB, logger *slog.Logger) *HistoryStep {
	return &HistoryStep{db: db, logger: logger}
}

// Name returns the step name for logging.
func (s *HistoryStep) Name() string { return "history" }

// Do saves the run report.
func (s *HistoryStep) Do(ctx context.Context, run *model.RunReport) error {
	id, err := s.db.SaveRun(ctx, run)
	if err != nil {
		s.logger.WarnContext(ctx, "history not recorded",
			"source", run.Source,
			"error", err,
		)
		return nil
	}

	s.logger.InfoContext(ctx, "run recorded",
		"source", run.Source,
		"run_id", id,
	)
	return nil
}
