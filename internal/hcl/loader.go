package hcl

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/ctxlog"
)

//go:embed default.hcl
var defaultPipeline []byte

// DefaultFileName is the name reported for the embedded configuration.
const DefaultFileName = "default.hcl"

const (
	defaultSourceExtension = ".c"
	defaultResultsFile     = "analysis_results.csv"
)

var defaultTools = []string{"ssdeep", "sdhash", "radiff2"}

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the pipeline file at path, or the embedded default when path
// is empty. Relative directories in a file are resolved against the file's
// own directory; those in the embedded default stay relative to the working
// directory.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()

	var (
		file    *hcl.File
		diags   hcl.Diagnostics
		baseDir string
	)
	if path == "" {
		logger.Debug("Using embedded default pipeline configuration.")
		file, diags = parser.ParseHCL(defaultPipeline, DefaultFileName)
	} else {
		logger.Debug("Loading pipeline configuration.", "path", path)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		file, diags = parser.ParseHCLFile(path)
		baseDir = filepath.Dir(path)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", nameOr(path), diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", nameOr(path), diags)
	}

	model, err := l.translate(&root, baseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", nameOr(path), err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", nameOr(path), err)
	}

	logger.Debug("HCL loading complete.",
		"tasks", len(model.Tasks),
		"commands", len(model.Commands),
		"analysis", model.Analysis != nil,
	)
	return model, nil
}

// translate converts the decoded HCL schema into the agnostic model,
// filling in defaults for optional attributes.
func (l *Loader) translate(root *fileRoot, baseDir string) (*config.Model, error) {
	m := &config.Model{
		CorpusDir:       resolve(baseDir, orDefault(root.CorpusDir, "corpus")),
		OutputDir:       resolve(baseDir, orDefault(root.OutputDir, "output")),
		Tasks:           root.Tasks,
		SourceExtension: orDefault(root.SourceExtension, defaultSourceExtension),
		Headers:         root.Headers,
		Seed:            root.Seed,
		Commands:        make(map[string]*config.Command, len(root.Commands)),
	}

	timeout, err := time.ParseDuration(orDefault(root.Timeout, "300s"))
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	m.Timeout = timeout

	for _, c := range root.Commands {
		if _, dup := m.Commands[c.Name]; dup {
			return nil, fmt.Errorf("command %q is defined more than once", c.Name)
		}
		m.Commands[c.Name] = &config.Command{Name: c.Name, Args: c.Args}
	}

	if root.Analysis != nil {
		a := &config.Analysis{
			Groups:      root.Analysis.Groups,
			Tools:       root.Analysis.Tools,
			ResultsFile: resolve(baseDir, orDefault(root.Analysis.ResultsFile, defaultResultsFile)),
		}
		if len(a.Tools) == 0 {
			a.Tools = append([]string(nil), defaultTools...)
		}
		m.Analysis = a
	}
	return m, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func resolve(baseDir, p string) string {
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func nameOr(path string) string {
	if path == "" {
		return DefaultFileName
	}
	return path
}
