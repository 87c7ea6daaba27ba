package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the configuration at path and translates it into the
	// format-agnostic model. An empty path selects the built-in defaults.
	Load(ctx context.Context, path string) (*Model, error)
}
