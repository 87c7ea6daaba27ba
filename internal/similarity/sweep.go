package similarity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/ctxlog"
	"github.com/vk/variantgrid/internal/fsutil"
	"github.com/vk/variantgrid/internal/variant"
)

// Header is the first row of the results file.
var Header = []string{"Task", "Variant", "Group", "Tool", "File1", "File2", "Score"}

// Row is one scored pair.
type Row struct {
	Task    string
	Variant variant.Tag
	Group   string
	Tool    string
	Pair
}

func (r Row) record() []string {
	return []string{r.Task, string(r.Variant), r.Group, r.Tool, r.File1, r.File2, r.Score}
}

// Sweeper runs the configured tools over a build output tree.
type Sweeper struct {
	cfg   *config.Model
	tools []Tool
}

// New prepares a sweep for cfg. The configuration must carry an analysis
// block naming known tools whose command templates are all defined.
func New(cfg *config.Model, runner command.Runner) (*Sweeper, error) {
	if cfg.Analysis == nil {
		return nil, errors.New("configuration has no analysis block")
	}
	if len(cfg.Analysis.Groups) == 0 {
		return nil, errors.New("analysis block lists no groups")
	}
	s := &Sweeper{cfg: cfg}
	for _, name := range cfg.Analysis.Tools {
		tool, err := NewTool(name, cfg, runner)
		if err != nil {
			return nil, err
		}
		s.tools = append(s.tools, tool)
	}
	return s, nil
}

// Run scores every same-variant pair of every configured group and task.
func (s *Sweeper) Run(ctx context.Context) ([]Row, error) {
	logger := ctxlog.FromContext(ctx)
	if !fsutil.IsDir(s.cfg.OutputDir) {
		return nil, fmt.Errorf("output directory %q not found, run a build first", s.cfg.OutputDir)
	}

	var rows []Row
	for _, task := range s.cfg.Tasks {
		taskDir := filepath.Join(s.cfg.OutputDir, task)
		if !fsutil.IsDir(taskDir) {
			logger.Warn("No build output for task, skipping.", "task", task)
			continue
		}
		logger.Info("Analysing task.", "task", task)

		for _, tag := range variant.All() {
			for _, group := range s.cfg.Analysis.Groups {
				gctx := ctxlog.With(ctx, "task", task, "variant", tag.String(), "group", group)
				files, err := artifacts(filepath.Join(taskDir, group), tag)
				if err != nil {
					ctxlog.FromContext(gctx).Warn("Group directory not readable, skipping.", "error", err)
					continue
				}
				if len(files) < 2 {
					ctxlog.FromContext(gctx).Warn("Fewer than 2 files to compare, skipping.", "files", len(files))
					continue
				}
				for _, tool := range s.tools {
					for _, p := range tool.Compare(gctx, files) {
						rows = append(rows, Row{Task: task, Variant: tag, Group: group, Tool: tool.Name(), Pair: p})
					}
				}
			}
		}
	}
	logger.Info("Similarity sweep finished.", "rows", len(rows))
	return rows, nil
}

// artifacts lists the files in dir built with tag, sorted by name.
func artifacts(dir string, tag variant.Tag) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, t, ok := variant.Parse(e.Name()); ok && t == tag {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows as CSV to path, creating parent directories.
func WriteFile(path string, rows []Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, rows)
}
