package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// preppedSource is the obfuscator input staged for one unit. It must be
// closed once the obfuscation stages are over, whatever their outcome.
type preppedSource struct {
	path string
}

// prepareSource writes src with the required headers prepended to dst.
func prepareSource(src, dst string, headers []string) (*preppedSource, error) {
	code, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(dst, []byte(withHeaders(string(code), headers)), 0o644); err != nil {
		return nil, err
	}
	return &preppedSource{path: dst}, nil
}

// Close removes the staged file. Closing twice is harmless.
func (p *preppedSource) Close() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// withHeaders prepends every header that code does not already contain as a
// line of its own. Whitespace and a trailing semicolon are ignored when
// comparing, so "#include<time.h>" counts as "#include <time.h>".
func withHeaders(code string, headers []string) string {
	present := make(map[string]bool)
	for _, line := range strings.Split(code, "\n") {
		present[headerKey(line)] = true
	}

	var b strings.Builder
	for _, h := range headers {
		key := headerKey(h)
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		b.WriteString(strings.TrimSpace(h))
		b.WriteByte('\n')
	}
	b.WriteString(code)
	return b.String()
}

func headerKey(line string) string {
	return strings.TrimSuffix(strings.Join(strings.Fields(line), ""), ";")
}
