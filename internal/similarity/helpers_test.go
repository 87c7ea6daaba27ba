package similarity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
)

var analysisCommands = map[string]string{
	config.CmdSsdeepHash:     `["ssdeep", "-s", left]`,
	config.CmdSsdeepMatch:    `["ssdeep", "-s", "-m", hashes, right]`,
	config.CmdSdhashCompare:  `concat(["sdhash", "-g", "-t", "1", "--separator", "csv"], files)`,
	config.CmdRadiff2Compare: `["radiff2", "-s", left, right]`,
}

func newModel(t *testing.T, output string, tools ...string) *config.Model {
	t.Helper()
	m := &config.Model{
		CorpusDir:       "corpus",
		OutputDir:       output,
		Tasks:           []string{"T1"},
		SourceExtension: ".c",
		Commands:        make(map[string]*config.Command),
		Analysis: &config.Analysis{
			Groups:      []string{"human", "gpt"},
			Tools:       tools,
			ResultsFile: filepath.Join(output, "results.csv"),
		},
	}
	for name, src := range analysisCommands {
		expr, diags := hclsyntax.ParseExpression([]byte(src), name+".hcl", hcl.InitialPos)
		require.False(t, diags.HasErrors(), diags.Error())
		m.Commands[name] = &config.Command{Name: name, Args: expr}
	}
	return m
}

// scriptedRunner answers each invocation through respond, keyed by the
// template name.
type scriptedRunner struct {
	mu      sync.Mutex
	specs   []command.Spec
	respond func(spec command.Spec) (*command.Result, error)
}

func (r *scriptedRunner) Run(_ context.Context, spec command.Spec) (*command.Result, error) {
	r.mu.Lock()
	r.specs = append(r.specs, spec)
	r.mu.Unlock()
	return r.respond(spec)
}

func (r *scriptedRunner) count(description string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.specs {
		if s.Description == description {
			n++
		}
	}
	return n
}

func exitError(spec command.Spec, code int) error {
	return &command.ExecError{Spec: spec, ExitCode: code, Err: fmt.Errorf("exit status %d", code)}
}

// writeFiles creates empty files under dir.
func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte(n), 0644))
		paths = append(paths, p)
	}
	return paths
}

func ok(stdout string) (*command.Result, error) {
	return &command.Result{Stdout: []byte(stdout)}, nil
}

func lastArg(spec command.Spec) string { return spec.Args[len(spec.Args)-1] }
