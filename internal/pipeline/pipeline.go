package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/ctxlog"
	"github.com/vk/variantgrid/internal/fsutil"
	"github.com/vk/variantgrid/internal/variant"
)

// Artifact is one output file of a unit.
type Artifact struct {
	Tag  variant.Tag
	Path string
}

// UnitReport records how far a unit got and what it produced.
type UnitReport struct {
	Unit      SourceUnit
	State     UnitState
	Artifacts []Artifact
}

// advance moves the unit to the next state of the build sequence.
func (r *UnitReport) advance(logger *slog.Logger) {
	r.State = r.State.next()
	logger.Debug("Unit state advanced.", "state", r.State.String())
}

// Report is the outcome of a run.
type Report struct {
	RunID uuid.UUID
	Units []UnitReport
}

// Pipeline builds every variant of every discovered source unit.
type Pipeline struct {
	cfg    *config.Model
	runner command.Runner
	layout Layout
	seeds  SeedSource
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithSeedSource replaces the seed source chosen from the configuration.
func WithSeedSource(s SeedSource) Option {
	return func(p *Pipeline) { p.seeds = s }
}

// New creates a pipeline for cfg that launches external programs through
// runner. A non-zero cfg.Seed pins the obfuscator seed.
func New(cfg *config.Model, runner command.Runner, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		runner: runner,
		layout: Layout{Root: cfg.OutputDir, Ext: cfg.SourceExtension},
	}
	if cfg.Seed != 0 {
		p.seeds = FixedSeed(cfg.Seed)
	} else {
		p.seeds = NewClockSeeds()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout returns the output layout used by the pipeline.
func (p *Pipeline) Layout() Layout { return p.layout }

// Run executes the whole build. On any stage failure the output tree is
// removed before the error is returned, and the report ends with the
// aborted unit. Errors raised before the first unit yield a nil report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.New()}
	ctx = ctxlog.With(ctx, "run_id", report.RunID.String())
	logger := ctxlog.FromContext(ctx)

	// Checked before the output tree is touched.
	if err := p.cfg.Validate(); err != nil {
		err = &ConfigurationError{Reason: "invalid configuration", Err: err}
		logger.Error("Cannot start build.", "error", err)
		return nil, err
	}
	if !fsutil.IsDir(p.cfg.CorpusDir) {
		err := &ConfigurationError{Reason: fmt.Sprintf("corpus directory %q not found", p.cfg.CorpusDir)}
		logger.Error("Cannot start build.", "error", err)
		return nil, err
	}

	if p.layout.Exists() {
		logger.Info("Deleting existing output directory for a clean build.", "path", p.layout.Root)
		if err := p.layout.Reset(); err != nil {
			logger.Error("Cannot clear output directory.", "error", err)
			return nil, err
		}
	}

	logger.Info("🚀 Starting binary generation pipeline.", "corpus", p.cfg.CorpusDir, "output", p.layout.Root)
	units, err := Discover(ctx, p.cfg.CorpusDir, p.cfg.Tasks, p.cfg.SourceExtension)
	if errors.Is(err, ErrNoInput) {
		logger.Warn("No source files found to process.", "tasks", p.cfg.Tasks)
		return report, nil
	}
	if err != nil {
		logger.Error("Source discovery failed.", "error", err)
		return nil, err
	}
	logger.Info("Sources discovered.", "count", len(units))

	for _, u := range units {
		ur := UnitReport{Unit: u, State: Discovered}
		if err := p.buildUnit(ctx, u, &ur); err != nil {
			logger.Error("Unit build failed.", "unit", u.String(), "last_state", ur.State.String())
			p.abort(ctx, err)
			// Everything the unit produced went with the output tree.
			ur.State, ur.Artifacts = Aborted, nil
			report.Units = append(report.Units, ur)
			return report, err
		}
		report.Units = append(report.Units, ur)
	}

	logger.Info("🏁 Build process completed successfully.", "units", len(report.Units))
	return report, nil
}

// buildUnit runs the stage sequence for one unit.
func (p *Pipeline) buildUnit(ctx context.Context, u SourceUnit, ur *UnitReport) error {
	ctx = ctxlog.With(ctx, "task", u.Task, "unit", u.String())
	logger := ctxlog.FromContext(ctx)
	logger.Info("Processing source file.", "path", u.Path)

	if err := p.layout.Prepare(u); err != nil {
		return &StageExecutionError{Unit: u, Stage: "prepare_output", Err: err}
	}

	if err := p.compile(ctx, u, config.CmdCompileBase, u.Path, variant.Base, ur); err != nil {
		return err
	}
	ur.advance(logger)

	sweep := []struct {
		cmd string
		tag variant.Tag
	}{
		{config.CmdCompileO0, variant.O0},
		{config.CmdCompileO3, variant.O3},
		{config.CmdCompileClangO2, variant.ClangO2},
	}
	for _, s := range sweep {
		if err := p.compile(ctx, u, s.cmd, u.Path, s.tag, ur); err != nil {
			return err
		}
	}
	ur.advance(logger)

	if err := p.strip(ctx, u, ur); err != nil {
		return err
	}
	ur.advance(logger)

	if err := p.obfuscate(ctx, u, p.seeds.Next(), ur); err != nil {
		return err
	}
	ur.advance(logger)
	return nil
}

// compile renders cmd for input and records the artifact for tag.
func (p *Pipeline) compile(ctx context.Context, u SourceUnit, cmd, input string, tag variant.Tag, ur *UnitReport) error {
	out := p.layout.Artifact(u, tag)
	if err := p.exec(ctx, u, cmd, config.Vars{"input": input, "output": out}); err != nil {
		return err
	}
	ur.Artifacts = append(ur.Artifacts, Artifact{Tag: tag, Path: out})
	return nil
}

// strip copies the baseline and strips the copy in place.
func (p *Pipeline) strip(ctx context.Context, u SourceUnit, ur *UnitReport) error {
	base := p.layout.Artifact(u, variant.Base)
	out := p.layout.Artifact(u, variant.Stripped)

	ctxlog.FromContext(ctx).Info("Copying baseline for stripping.", "from", base, "to", out)
	if err := fsutil.CopyFile(base, out); err != nil {
		return &StageExecutionError{Unit: u, Stage: "copy_baseline", Err: err}
	}
	if err := p.exec(ctx, u, config.CmdStrip, config.Vars{"input": base, "output": out}); err != nil {
		return err
	}
	ur.Artifacts = append(ur.Artifacts, Artifact{Tag: variant.Stripped, Path: out})
	return nil
}

// obfuscate stages the prepped source and builds both obfuscated variants
// from it. The prepped source is removed on every path out.
func (p *Pipeline) obfuscate(ctx context.Context, u SourceUnit, seed int64, ur *UnitReport) (err error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Pre-processing source for obfuscation.", "seed", seed)

	prepped, err := prepareSource(u.Path, p.layout.Temp(u, tempPrepped), p.cfg.Headers)
	if err != nil {
		return &StageExecutionError{Unit: u, Stage: "prepare_obfuscation", Err: err}
	}
	defer func() {
		if cerr := prepped.Close(); cerr != nil {
			logger.Error("Failed to remove prepped source.", "path", prepped.path, "error", cerr)
			if err == nil {
				err = &StageExecutionError{Unit: u, Stage: "cleanup_prepped", Err: cerr}
			}
		}
	}()
	ur.advance(logger)

	if err := p.transform(ctx, u, config.CmdFlatten, tempFlat, variant.CFF, prepped.path, seed, ur); err != nil {
		return err
	}
	ur.advance(logger)

	if err := p.transform(ctx, u, config.CmdEncodeLiterals, tempELit, variant.ELit, prepped.path, seed, ur); err != nil {
		return err
	}
	ur.advance(logger)
	return nil
}

// transform runs one obfuscator pass into a temporary source, compiles it
// into the artifact for tag and deletes the temporary source.
func (p *Pipeline) transform(ctx context.Context, u SourceUnit, cmd, kind string, tag variant.Tag, input string, seed int64, ur *UnitReport) error {
	tmp := p.layout.Temp(u, kind)
	if err := p.exec(ctx, u, cmd, config.Vars{"input": input, "output": tmp, "seed": seed}); err != nil {
		return err
	}
	if err := p.compile(ctx, u, config.CmdCompileObfuscated, tmp, tag, ur); err != nil {
		return err
	}
	if err := os.Remove(tmp); err != nil {
		return &StageExecutionError{Unit: u, Stage: "cleanup_" + kind, Err: err}
	}
	return nil
}

// exec renders and runs one command template.
func (p *Pipeline) exec(ctx context.Context, u SourceUnit, name string, vars config.Vars) error {
	args, err := p.cfg.Render(name, vars)
	if err != nil {
		return &StageExecutionError{Unit: u, Stage: name, Err: err}
	}
	ctxlog.FromContext(ctx).Info("Running stage.", "stage", name)
	if _, err := p.runner.Run(ctx, command.Spec{Description: name, Args: args}); err != nil {
		return &StageExecutionError{Unit: u, Stage: name, Err: err}
	}
	return nil
}

// abort reports err and removes the output tree.
func (p *Pipeline) abort(ctx context.Context, err error) {
	logger := ctxlog.FromContext(ctx)

	attrs := []any{"error", err}
	var stageErr *StageExecutionError
	if errors.As(err, &stageErr) {
		attrs = append(attrs, "stage", stageErr.Stage, "unit", stageErr.Unit.String())
		if execErr, ok := stageErr.ExecError(); ok {
			attrs = append(attrs, "command", execErr.Spec.String(), "exit_code", execErr.ExitCode, "timed_out", execErr.TimedOut)
			if out := strings.TrimSpace(string(execErr.Stdout)); out != "" {
				attrs = append(attrs, "stdout", out)
			}
			if out := strings.TrimSpace(string(execErr.Stderr)); out != "" {
				attrs = append(attrs, "stderr", out)
			}
		}
	}
	logger.Error("Fatal error, aborting build.", attrs...)

	logger.Warn("Cleaning up all generated files.", "path", p.layout.Root)
	if !p.layout.Exists() {
		logger.Info("Output directory not found. Nothing to clean.")
		return
	}
	if rerr := p.layout.Reset(); rerr != nil {
		logger.Log(ctx, ctxlog.LevelCritical, "Failed to delete output directory.", "error", rerr)
		return
	}
	logger.Info("Output directory deleted.", "path", p.layout.Root)
}
