package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBatch(t *testing.T) {
	got := BuildBatch([]string{"Jan Jansen, jan@x.nl", "noise"})

	want := "[BEGIN CV]\nJan Jansen, jan@x.nl\n[END CV]\n[BEGIN CV]\nnoise\n[END CV]\n"
	assert.Equal(t, want, got)
}

func TestBuildBatch_MarkerCounts(t *testing.T) {
	texts := []string{"first", "second", "third", "", "fifth"}
	got := BuildBatch(texts)

	assert.Equal(t, len(texts), strings.Count(got, BeginCVMarker))
	assert.Equal(t, len(texts), strings.Count(got, EndCVMarker))

	// Texts appear in input order, each between its own pair of markers.
	rest := got
	for _, text := range texts {
		begin := strings.Index(rest, BeginCVMarker)
		end := strings.Index(rest, EndCVMarker)
		assert.Less(t, begin, end)
		assert.Equal(t, "\n"+text+"\n", rest[begin+len(BeginCVMarker):end])
		rest = rest[end+len(EndCVMarker):]
	}
}

func TestBuildBatch_Empty(t *testing.T) {
	assert.Equal(t, "", BuildBatch(nil))
}
