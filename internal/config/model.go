package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Names of the command templates used by the build pipeline.
const (
	CmdCompileBase       = "compile_base"
	CmdCompileO0         = "compile_O0"
	CmdCompileO3         = "compile_O3"
	CmdCompileClangO2    = "compile_clang_O2"
	CmdStrip             = "strip"
	CmdFlatten           = "flatten"
	CmdEncodeLiterals    = "encode_literals"
	CmdCompileObfuscated = "compile_obfuscated"
)

// Names of the command templates used by the similarity sweep.
const (
	CmdSsdeepHash     = "ssdeep_hash"
	CmdSsdeepMatch    = "ssdeep_match"
	CmdSdhashCompare  = "sdhash_compare"
	CmdRadiff2Compare = "radiff2_compare"
)

// BuildCommands lists the templates every configuration must define.
var BuildCommands = []string{
	CmdCompileBase,
	CmdCompileO0,
	CmdCompileO3,
	CmdCompileClangO2,
	CmdStrip,
	CmdFlatten,
	CmdEncodeLiterals,
	CmdCompileObfuscated,
}

// Model is the unified, format-agnostic representation of a pipeline run.
type Model struct {
	CorpusDir       string
	OutputDir       string
	Tasks           []string
	SourceExtension string
	Timeout         time.Duration
	// Headers are prepended to a source before it is handed to the obfuscator.
	Headers []string
	// Seed pins the obfuscator seed when non-zero.
	Seed     int64
	Commands map[string]*Command
	Analysis *Analysis
}

// Command is a named, unevaluated argument-vector template.
type Command struct {
	Name string
	Args hcl.Expression
}

// Analysis configures the similarity sweep over a finished build.
type Analysis struct {
	Groups      []string
	Tools       []string
	ResultsFile string
}

// Validate checks the invariants the pipeline relies on.
func (m *Model) Validate() error {
	var errs []error
	if m.CorpusDir == "" {
		errs = append(errs, errors.New("corpus_dir must not be empty"))
	}
	if m.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if m.CorpusDir != "" && m.OutputDir != "" {
		if err := checkDisjoint(m.CorpusDir, m.OutputDir); err != nil {
			errs = append(errs, err)
		}
	}
	if len(m.Tasks) == 0 {
		errs = append(errs, errors.New("at least one task is required"))
	}
	if !strings.HasPrefix(m.SourceExtension, ".") || len(m.SourceExtension) < 2 {
		errs = append(errs, fmt.Errorf("source_extension %q must start with a dot", m.SourceExtension))
	}
	if m.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", m.Timeout))
	}
	if missing := m.missingCommands(BuildCommands); len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing command templates: %s", strings.Join(missing, ", ")))
	}
	return errors.Join(errs...)
}

// checkDisjoint rejects an output root that is, contains, or lies inside the
// corpus. The output root is deleted wholesale before every build.
func checkDisjoint(corpus, output string) error {
	absCorpus, err := filepath.Abs(corpus)
	if err != nil {
		return fmt.Errorf("corpus_dir: %w", err)
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	switch {
	case absCorpus == absOutput:
		return errors.New("output_dir must differ from corpus_dir")
	case within(absOutput, absCorpus):
		return fmt.Errorf("output_dir %q must not contain corpus_dir %q", output, corpus)
	case within(absCorpus, absOutput):
		return fmt.Errorf("output_dir %q must not be inside corpus_dir %q", output, corpus)
	}
	return nil
}

// within reports whether path lies below dir. Both must be absolute.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (m *Model) missingCommands(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := m.Commands[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// RequireCommands reports an error naming every template in names that the
// model does not define.
func (m *Model) RequireCommands(names ...string) error {
	if missing := m.missingCommands(names); len(missing) > 0 {
		return fmt.Errorf("missing command templates: %s", strings.Join(missing, ", "))
	}
	return nil
}
