package pipeline

import (
	"os"
	"path/filepath"

	"github.com/vk/variantgrid/internal/variant"
)

// Temporary source kinds staged next to the artifacts of a unit.
const (
	tempPrepped = "prepped"
	tempFlat    = "flat"
	tempELit    = "elit"
)

// Layout maps source units onto the output tree. The tree mirrors the
// corpus: a unit at <corpus>/<rel>/<name><ext> gets its artifacts in
// <root>/<rel>.
type Layout struct {
	Root string
	// Ext is the source extension given to temporary source files.
	Ext string
}

// Dir returns the output directory of u.
func (l Layout) Dir(u SourceUnit) string {
	return filepath.Join(l.Root, u.RelDir)
}

// Artifact returns the path of the artifact of u with the given tag.
func (l Layout) Artifact(u SourceUnit, t variant.Tag) string {
	return filepath.Join(l.Dir(u), variant.ArtifactName(u.BaseName, t))
}

// Temp returns the path of a transient source file of u, e.g.
// <dir>/1_prepped_temp.c.
func (l Layout) Temp(u SourceUnit, kind string) string {
	return filepath.Join(l.Dir(u), u.BaseName+"_"+kind+"_temp"+l.Ext)
}

// Prepare creates the output directory of u. It is safe to call repeatedly.
func (l Layout) Prepare(u SourceUnit) error {
	return os.MkdirAll(l.Dir(u), 0o755)
}

// Reset removes the whole output tree. A missing tree is not an error.
func (l Layout) Reset() error {
	if err := os.RemoveAll(l.Root); err != nil {
		return &FilesystemError{Op: "remove", Path: l.Root, Err: err}
	}
	return nil
}

// Exists reports whether the output root is present.
func (l Layout) Exists() bool {
	_, err := os.Lstat(l.Root)
	return err == nil
}
