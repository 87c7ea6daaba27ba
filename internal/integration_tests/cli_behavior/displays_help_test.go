package integration_tests

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vk/variantgrid/internal/cli"
)

// Test for: displays help
func TestCLI_DisplaysHelp_WhenAsked(t *testing.T) {
	t.Parallel() // This test is safe to run in parallel with others.

	// --- Arrange ---
	// Create a buffer to capture the output from the CLI parser.
	outW := &bytes.Buffer{}

	// --- Act ---
	appConfig, shouldExit, err := cli.Parse([]string{"-h"}, outW)

	// --- Assert ---
	if err != nil {
		t.Fatalf("cli.Parse() returned an unexpected error: %v", err)
	}

	if !shouldExit {
		t.Fatal("cli.Parse() should have indicated an exit, but it did not")
	}

	// Verify that the help text was printed by checking for known strings.
	for _, want := range []string{"Usage:", "build", "analyze", "--no-summary"} {
		if !strings.Contains(outW.String(), want) {
			t.Errorf("expected output to contain %q, but got:\n%s", want, outW.String())
		}
	}

	// If the program is exiting to show help, no config should be returned.
	if appConfig != nil {
		t.Errorf("expected a nil Config when displaying help, but got a non-nil config")
	}
}

func TestCLI_BuildsByDefault(t *testing.T) {
	t.Parallel()

	// --- Act ---
	appConfig, shouldExit, err := cli.Parse(nil, &bytes.Buffer{})

	// --- Assert ---
	if err != nil || shouldExit {
		t.Fatalf("cli.Parse() = exit %v, err %v; want a config", shouldExit, err)
	}
	if appConfig.Command != "build" || appConfig.ConfigPath != "" {
		t.Errorf("expected the built-in pipeline and the build command, got %+v", appConfig)
	}
}
