package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/ctxlog"
)

// fakeCommands are templates understood by fakeRunner.
var fakeCommands = map[string]string{
	config.CmdCompileBase:       `["cc", "-O2", input, "-o", output]`,
	config.CmdCompileO0:         `["cc", "-O0", input, "-o", output]`,
	config.CmdCompileO3:         `["cc", "-O3", input, "-o", output]`,
	config.CmdCompileClangO2:    `["clang", "-O2", input, "-o", output]`,
	config.CmdStrip:             `["strip", output]`,
	config.CmdFlatten:           `["obf", "--Seed=${seed}", "--Transform=Flatten", "--out=${output}", input]`,
	config.CmdEncodeLiterals:    `["obf", "--Seed=${seed}", "--Transform=EncodeLiterals", "--out=${output}", input]`,
	config.CmdCompileObfuscated: `["cc", "-O2", input, "-o", output]`,
}

// processCommands build with real processes: copies stand in for compilers.
var processCommands = map[string]string{
	config.CmdCompileBase:       `["cp", input, output]`,
	config.CmdCompileO0:         `["cp", input, output]`,
	config.CmdCompileO3:         `["cp", input, output]`,
	config.CmdCompileClangO2:    `["cp", input, output]`,
	config.CmdStrip:             `["sh", "-c", "printf stripped > \"$1\"", "strip", output]`,
	config.CmdFlatten:           `["sh", "-c", "{ echo \"// flat $1\"; cat \"$2\"; } > \"$3\"", "flatten", "${seed}", input, output]`,
	config.CmdEncodeLiterals:    `["sh", "-c", "{ echo \"// elit $1\"; cat \"$2\"; } > \"$3\"", "elit", "${seed}", input, output]`,
	config.CmdCompileObfuscated: `["cp", input, output]`,
}

type testEnv struct {
	root   string
	corpus string
	output string
	logs   *bytes.Buffer
	ctx    context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("VG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return &testEnv{
		root:   root,
		corpus: filepath.Join(root, "corpus"),
		output: filepath.Join(root, "output"),
		logs:   logs,
		ctx:    ctxlog.WithLogger(context.Background(), logger),
	}
}

// addSource writes a source file at corpus/<rel>.
func (e *testEnv) addSource(t *testing.T, rel, code string) string {
	t.Helper()
	path := filepath.Join(e.corpus, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(code), 0644))
	return path
}

func (e *testEnv) model(t *testing.T, tasks []string, commands map[string]string) *config.Model {
	t.Helper()
	m := &config.Model{
		CorpusDir:       e.corpus,
		OutputDir:       e.output,
		Tasks:           tasks,
		SourceExtension: ".c",
		Timeout:         10 * time.Second,
		Headers:         []string{"#include <stdlib.h>", "#include <time.h>"},
		Commands:        make(map[string]*config.Command, len(commands)),
	}
	for name, src := range commands {
		expr, diags := hclsyntax.ParseExpression([]byte(src), name+".hcl", hcl.InitialPos)
		require.False(t, diags.HasErrors(), diags.Error())
		m.Commands[name] = &config.Command{Name: name, Args: expr}
	}
	require.NoError(t, m.Validate())
	return m
}

// fakeRunner simulates the toolchain: every invocation writes the file named
// by "-o <path>" or "--out=<path>", and "strip" rewrites its operand.
type fakeRunner struct {
	mu    sync.Mutex
	specs []command.Spec
	// failOn makes the invocation of the named template fail with status 1.
	failOn string
	// skipOutput makes the named template succeed without writing anything.
	skipOutput string
}

func (f *fakeRunner) Run(_ context.Context, spec command.Spec) (*command.Result, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.mu.Unlock()

	if spec.Description == f.failOn {
		return nil, &command.ExecError{
			Spec:     spec,
			ExitCode: 1,
			Stderr:   []byte("error: simulated failure\n"),
			Err:      fmt.Errorf("exit status 1"),
		}
	}
	if spec.Description == f.skipOutput {
		return &command.Result{}, nil
	}

	args := spec.Args
	switch args[0] {
	case "strip":
		if err := os.WriteFile(args[len(args)-1], []byte("stripped"), 0755); err != nil {
			return nil, &command.ExecError{Spec: spec, ExitCode: -1, Err: err}
		}
		return &command.Result{}, nil
	}

	for i, a := range args {
		var out string
		switch {
		case a == "-o" && i+1 < len(args):
			out = args[i+1]
		case strings.HasPrefix(a, "--out="):
			out = strings.TrimPrefix(a, "--out=")
		default:
			continue
		}
		content := strings.Join(args, " ")
		if err := os.WriteFile(out, []byte(content), 0755); err != nil {
			return nil, &command.ExecError{Spec: spec, ExitCode: -1, Err: err}
		}
	}
	return &command.Result{}, nil
}

func (f *fakeRunner) descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.specs))
	for i, s := range f.specs {
		out[i] = s.Description
	}
	return out
}

// listTree returns every file under root, relative to it, sorted.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}
