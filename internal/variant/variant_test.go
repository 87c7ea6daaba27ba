package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll_BuildOrder(t *testing.T) {
	assert.Equal(t, []Tag{"base", "O0", "O3", "clang_O2", "stripped", "cff", "elit"}, All())
}

func TestAll_ReturnsCopy(t *testing.T) {
	tags := All()
	tags[0] = "mutated"
	assert.Equal(t, Base, All()[0])
}

func TestArtifactNameRoundTrip(t *testing.T) {
	for _, tag := range All() {
		name := ArtifactName("1", tag)
		base, got, ok := Parse(name)
		assert.True(t, ok, name)
		assert.Equal(t, "1", base)
		assert.Equal(t, tag, got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantTag  Tag
		wantOK   bool
	}{
		{"10_clang_O2", "10", ClangO2, true},
		{"my_prog_O3", "my_prog", O3, true},
		{"1_prepped_temp.c", "", "", false},
		{"_base", "", "", false},
		{"1_O2", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, tag, ok := Parse(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}
