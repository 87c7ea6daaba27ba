package testutil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/variantgrid/internal/config"
)

// stubCommands build with POSIX tools only: copies stand in for compilers,
// and the obfuscator passes prefix a seed comment to their input.
var stubCommands = map[string]string{
	config.CmdCompileBase:       `["cp", input, output]`,
	config.CmdCompileO0:         `["cp", input, output]`,
	config.CmdCompileO3:         `["cp", input, output]`,
	config.CmdCompileClangO2:    `["cp", input, output]`,
	config.CmdStrip:             `["sh", "-c", "printf stripped > \"$1\"", "strip", output]`,
	config.CmdFlatten:           `["sh", "-c", "{ echo \"// flat $1\"; cat \"$2\"; } > \"$3\"", "flatten", "${seed}", input, output]`,
	config.CmdEncodeLiterals:    `["sh", "-c", "{ echo \"// elit $1\"; cat \"$2\"; } > \"$3\"", "elit", "${seed}", input, output]`,
	config.CmdCompileObfuscated: `["cp", input, output]`,
	config.CmdRadiff2Compare:    `["sh", "-c", "if [ \"$(cat \"$1\")\" = \"$(cat \"$2\")\" ]; then echo similarity: 1.0; else echo similarity: 0.25; fi", "radiff2", left, right]`,
}

// PipelineHCL renders a pipeline file over corpus/ and output/ for tasks.
// Entries in overrides replace the args expression of the named command.
func PipelineHCL(tasks []string, overrides map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "corpus_dir = %q\noutput_dir = %q\ntimeout = %q\nseed = 7\n", "corpus", "output", "10s")
	fmt.Fprintf(&b, "tasks = [%s]\n", quoteList(tasks))
	b.WriteString("headers = [\"#include <stdlib.h>\", \"#include <time.h>\"]\n\n")

	names := make([]string, 0, len(stubCommands))
	for name := range stubCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args := stubCommands[name]
		if o, ok := overrides[name]; ok {
			args = o
		}
		fmt.Fprintf(&b, "command %q {\n  args = %s\n}\n\n", name, args)
	}

	fmt.Fprintf(&b, "analysis {\n  groups = [%s]\n  tools = [%s]\n}\n", quoteList([]string{"human", "gpt"}), quoteList([]string{"radiff2"}))
	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
