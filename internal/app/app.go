package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/ctxlog"
	"github.com/vk/variantgrid/internal/pipeline"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	model  *config.Model
	runner command.Runner
}

// NewApp is the constructor for the main application. Logs go to logW and
// the run summary to outW. The pipeline configuration is loaded eagerly so
// that a bad file fails before any work starts.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return nil, &pipeline.ConfigurationError{Reason: "failed to load configuration", Err: err}
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"corpus", model.CorpusDir, "output", model.OutputDir, "tasks", len(model.Tasks), "commands", len(model.Commands))

	return &App{
		outW:   outW,
		logger: logger,
		cfg:    cfg,
		model:  model,
		runner: command.NewExecRunner(model.Timeout),
	}, nil
}
