package examdoc

import (
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// Repair rebuilds a document from its markers alone: existing headers are
// dropped, markers of every kind are normalized, paragraphs are regrouped and
// reclassified, and a canonical header is written for each block.
func Repair(text string) string {
	lines := dropTopHeader(strings.Split(normalizeNewlines(text), "\n"))

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isAnyHeader(line) {
			// Keep paragraph boundaries where the header was.
			kept = append(kept, "")
			continue
		}
		kept = append(kept, normalizeLine(line, api.Kinds...))
	}

	blocks := splitParagraphs(strings.Join(kept, "\n"))
	for i := range blocks {
		blocks[i].Header = blocks[i].Kind.Header()
	}
	return Assemble(blocks)
}
