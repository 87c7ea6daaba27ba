package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/variantgrid/internal/ctxlog"
	"github.com/vk/variantgrid/internal/fsutil"
)

// SourceUnit is one input source file.
type SourceUnit struct {
	// Task is the task directory the file was found under.
	Task string
	// Path is the path of the source file, including the corpus root.
	Path string
	// RelDir is the directory of the file relative to the corpus root.
	RelDir string
	// BaseName is the file name without its extension.
	BaseName string
}

func (u SourceUnit) String() string {
	return filepath.Join(u.RelDir, u.BaseName)
}

// Discover scans corpusDir/<task> recursively for files ending in ext, one
// task at a time in the given order. Files within a task are sorted.
//
// A missing corpus root is a *ConfigurationError. Tasks without sources are
// logged and skipped, and ErrNoInput is returned if nothing matched at all.
func Discover(ctx context.Context, corpusDir string, tasks []string, ext string) ([]SourceUnit, error) {
	logger := ctxlog.FromContext(ctx)

	if !fsutil.IsDir(corpusDir) {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("corpus directory %q not found", corpusDir)}
	}

	var units []SourceUnit
	seen := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if _, dup := seen[task]; dup {
			logger.Warn("Task listed more than once, scanning it once.", "task", task)
			continue
		}
		seen[task] = struct{}{}

		taskDir := filepath.Join(corpusDir, task)
		if !fsutil.IsDir(taskDir) {
			logger.Warn("Task directory not found, no artifacts will be built for it.", "task", task, "path", taskDir)
			continue
		}

		files, err := fsutil.FindFilesByExtension(taskDir, ext)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("cannot scan task %q", task), Err: err}
		}
		if len(files) == 0 {
			logger.Warn("No source files found for task.", "task", task, "extension", ext)
			continue
		}

		for _, file := range files {
			rel, err := filepath.Rel(corpusDir, file)
			if err != nil {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("cannot relate %q to corpus", file), Err: err}
			}
			units = append(units, SourceUnit{
				Task:     task,
				Path:     file,
				RelDir:   filepath.Dir(rel),
				BaseName: strings.TrimSuffix(filepath.Base(file), ext),
			})
		}
		logger.Debug("Task scanned.", "task", task, "sources", len(files))
	}

	if len(units) == 0 {
		return nil, ErrNoInput
	}
	return units, nil
}
