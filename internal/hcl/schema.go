package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is the top-level structure of a pipeline file.
type fileRoot struct {
	CorpusDir       string        `hcl:"corpus_dir,optional"`
	OutputDir       string        `hcl:"output_dir,optional"`
	Tasks           []string      `hcl:"tasks"`
	SourceExtension string        `hcl:"source_extension,optional"`
	Timeout         string        `hcl:"timeout,optional"`
	Headers         []string      `hcl:"headers,optional"`
	Seed            int64         `hcl:"seed,optional"`
	Commands        []*command    `hcl:"command,block"`
	Analysis        *analysisBody `hcl:"analysis,block"`
}

// command is a `command "<name>" { args = [...] }` block.
type command struct {
	Name string         `hcl:"name,label"`
	Args hcl.Expression `hcl:"args"`
}

// analysisBody is the optional `analysis { ... }` block.
type analysisBody struct {
	Groups      []string `hcl:"groups"`
	Tools       []string `hcl:"tools,optional"`
	ResultsFile string   `hcl:"results_file,optional"`
}
