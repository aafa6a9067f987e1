package services

import "strings"

const (
	BeginCVMarker = "[BEGIN CV]"
	EndCVMarker   = "[END CV]"
)

// BuildBatch wraps each CV text in begin/end markers and concatenates them
// in input order. Marker strings inside a CV are not escaped.
func BuildBatch(texts []string) string {
	var b strings.Builder
	for _, text := range texts {
		b.WriteString(BeginCVMarker)
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
		b.WriteString(EndCVMarker)
		b.WriteString("\n")
	}
	return b.String()
}
