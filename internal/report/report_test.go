package report

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/variantgrid/internal/pipeline"
	"github.com/vk/variantgrid/internal/variant"
)

func sampleReport() *pipeline.Report {
	done := pipeline.UnitReport{
		Unit:  pipeline.SourceUnit{Task: "T1_WordCount", Path: "corpus/T1_WordCount/human/1.c", RelDir: "T1_WordCount/human", BaseName: "1"},
		State: pipeline.Done,
	}
	for _, tag := range variant.All() {
		done.Artifacts = append(done.Artifacts, pipeline.Artifact{Tag: tag})
	}
	aborted := pipeline.UnitReport{
		Unit:  pipeline.SourceUnit{Task: "T2_Calc", Path: "corpus/T2_Calc/2.c", RelDir: "T2_Calc", BaseName: "2"},
		State: pipeline.Aborted,
	}
	return &pipeline.Report{RunID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Units: []pipeline.UnitReport{done, aborted}}
}

func TestRows(t *testing.T) {
	want := [][]string{
		{"T1_WordCount", "human", "1", "Done", "7"},
		{"T2_Calc", "-", "2", "Aborted", "0"},
	}
	assert.Equal(t, want, Rows(sampleReport()))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	for _, h := range Headers {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "T1_WordCount")
	assert.Contains(t, out, "Aborted")
	assert.Contains(t, out, "2 units, 7 artifacts")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &pipeline.Report{}))
	assert.Contains(t, buf.String(), "No source units were built.")
}
