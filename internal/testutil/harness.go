package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/variantgrid/internal/app"
	"github.com/vk/variantgrid/internal/hcl"
)

// ConfigFile is the name of the pipeline file inside a test project.
const ConfigFile = "pipeline.hcl"

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Root is the project directory the files were written to.
	Root      string
	LogOutput string
	// Output is what the app wrote for the user, e.g. the summary table.
	Output string
	Err    error
	App    *app.App
}

// Path returns rel joined onto the project root.
func (r *HarnessResult) Path(rel ...string) string {
	return filepath.Join(append([]string{r.Root}, rel...)...)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, command string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, command)
}

// RunIntegrationTestWithContext writes files into a fresh project directory,
// loads <root>/pipeline.hcl and runs command against it with real processes.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, command string) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	root := t.TempDir()

	// 2. Write all files. Relative names such as "corpus/T1/human/1.c"
	//    create their subdirectories.
	for name, content := range files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	appConfig := &app.Config{
		ConfigPath: filepath.Join(root, ConfigFile),
		Command:    command,
		LogLevel:   "debug",
		LogFormat:  "text",
		Summary:    true,
	}

	out := &app.SafeBuffer{}
	logBuffer := &app.SafeBuffer{}
	result := &HarnessResult{Root: root}

	testApp, err := app.NewApp(out, logBuffer, appConfig, hcl.NewLoader())
	if err == nil {
		result.App = testApp
		err = testApp.Run(ctx)
	}

	if os.Getenv("VG_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result.LogOutput = logBuffer.String()
	result.Output = out.String()
	result.Err = err
	return result
}
