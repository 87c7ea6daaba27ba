package similarity

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/variantgrid/internal/command"
	"github.com/vk/variantgrid/internal/config"
	"github.com/vk/variantgrid/internal/variant"
)

func TestNew_Validation(t *testing.T) {
	m := newModel(t, t.TempDir(), "radiff2")
	m.Analysis = nil
	_, err := New(m, &scriptedRunner{})
	require.ErrorContains(t, err, "no analysis block")

	m = newModel(t, t.TempDir(), "radiff2")
	m.Analysis.Groups = nil
	_, err = New(m, &scriptedRunner{})
	require.ErrorContains(t, err, "no groups")

	m = newModel(t, t.TempDir(), "radiff2", "bogus")
	_, err = New(m, &scriptedRunner{})
	require.ErrorContains(t, err, "bogus")
}

func TestSweep_MissingOutputTree(t *testing.T) {
	m := newModel(t, filepath.Join(t.TempDir(), "absent"), "radiff2")
	s, err := New(m, &scriptedRunner{})
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.ErrorContains(t, err, "run a build first")
}

func TestSweep_GroupsVariantsAndSkips(t *testing.T) {
	out := t.TempDir()
	// human has two O0 binaries and one O3; gpt has a single O0.
	writeFiles(t, filepath.Join(out, "T1", "human"), "1_O0", "2_O0", "1_O3", "1_prepped_temp.c")
	writeFiles(t, filepath.Join(out, "T1", "gpt"), "1_O0")

	runner := &scriptedRunner{respond: func(spec command.Spec) (*command.Result, error) {
		return ok("similarity: 0.75\n")
	}}
	m := newModel(t, out, "radiff2")
	m.Tasks = []string{"T1", "T2"}
	s, err := New(m, runner)
	require.NoError(t, err)

	rows, err := s.Run(context.Background())
	require.NoError(t, err)

	want := []Row{{
		Task:    "T1",
		Variant: variant.O0,
		Group:   "human",
		Tool:    "radiff2",
		Pair:    Pair{File1: "1_O0", File2: "2_O0", Score: "0.75"},
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, runner.count(config.CmdRadiff2Compare))
}

func TestSweep_ToolOrderPerGroup(t *testing.T) {
	out := t.TempDir()
	writeFiles(t, filepath.Join(out, "T1", "gpt"), "2_stripped", "1_stripped")

	runner := &scriptedRunner{respond: func(spec command.Spec) (*command.Result, error) {
		switch spec.Description {
		case config.CmdSdhashCompare:
			return ok(spec.Args[6] + "|" + spec.Args[7] + "|077\n")
		default:
			return ok("similarity: 0.1\n")
		}
	}}
	s, err := New(newModel(t, out, "sdhash", "radiff2"), runner)
	require.NoError(t, err)

	rows, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sdhash", rows[0].Tool)
	assert.Equal(t, "077", rows[0].Score)
	assert.Equal(t, "radiff2", rows[1].Tool)
	// Files are compared in name order.
	assert.Equal(t, "1_stripped", rows[1].File1)
	assert.Equal(t, "2_stripped", rows[1].File2)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{
		Task:    "T1",
		Variant: variant.ClangO2,
		Group:   "human",
		Tool:    "ssdeep",
		Pair:    Pair{File1: "1_clang_O2", File2: "2,odd_clang_O2", Score: "0"},
	}}
	require.NoError(t, WriteCSV(&buf, rows))

	want := "Task,Variant,Group,Tool,File1,File2,Score\n" +
		"T1,clang_O2,human,ssdeep,1_clang_O2,\"2,odd_clang_O2\",0\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteFile_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "results.csv")
	require.NoError(t, WriteFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Task,Variant,Group,Tool,File1,File2,Score\n", string(data))
}
