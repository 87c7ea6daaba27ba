package app

import "fmt"

// Commands accepted by the application.
const (
	CommandBuild   = "build"
	CommandAnalyze = "analyze"
	CommandAll     = "all"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPath is the pipeline file; empty selects the embedded default.
	ConfigPath string
	Command    string

	LogFormat string
	LogLevel  string
	// Summary prints the run summary table after a successful build.
	Summary bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandBuild, CommandAnalyze, CommandAll:
	case "":
		cfg.Command = CommandBuild
	default:
		return nil, fmt.Errorf("unknown command %q: must be %q, %q or %q", cfg.Command, CommandBuild, CommandAnalyze, CommandAll)
	}
	return &cfg, nil
}

func (c *Config) builds() bool {
	return c.Command == CommandBuild || c.Command == CommandAll
}

func (c *Config) analyzes() bool {
	return c.Command == CommandAnalyze || c.Command == CommandAll
}
