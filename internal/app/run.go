package app

import (
	"context"
	"fmt"

	"github.com/vk/variantgrid/internal/ctxlog"
	"github.com/vk/variantgrid/internal/pipeline"
	"github.com/vk/variantgrid/internal/report"
	"github.com/vk/variantgrid/internal/similarity"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.cfg.Command)

	if a.cfg.builds() {
		rep, err := a.build(ctx)
		if err != nil {
			return err
		}
		if a.cfg.analyzes() && len(rep.Units) == 0 {
			a.logger.Warn("Nothing was built, skipping similarity analysis.")
			return nil
		}
	}
	if a.cfg.analyzes() {
		if err := a.analyze(ctx); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) build(ctx context.Context) (*pipeline.Report, error) {
	p := pipeline.New(a.model, a.runner)
	rep, err := p.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	if a.cfg.Summary {
		if err := report.Write(a.outW, rep); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return rep, nil
}

func (a *App) analyze(ctx context.Context) error {
	sweeper, err := similarity.New(a.model, a.runner)
	if err != nil {
		return &pipeline.ConfigurationError{Reason: "invalid analysis configuration", Err: err}
	}

	a.logger.Info("🔬 Starting similarity analysis.", "tools", a.model.Analysis.Tools, "groups", a.model.Analysis.Groups)
	rows, err := sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if err := similarity.WriteFile(a.model.Analysis.ResultsFile, rows); err != nil {
		return fmt.Errorf("failed to write results to %s: %w", a.model.Analysis.ResultsFile, err)
	}
	a.logger.Info("🏁 Analysis complete.", "results", a.model.Analysis.ResultsFile, "rows", len(rows))
	return nil
}
