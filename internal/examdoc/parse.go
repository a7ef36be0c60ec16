package examdoc

import (
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// Block is one typed question of a document.
type Block struct {
	Kind   api.QuestionKind
	Header string
	Body   string

	// Inferred is set when the kind was derived from markers rather than
	// read from a header.
	Inferred bool
}

// String renders the block as header, blank line, body.
func (b Block) String() string {
	if b.Body == "" {
		return b.Header
	}
	return b.Header + "\n\n" + b.Body
}

// Document is a parsed exam document.
type Document struct {
	Blocks []Block

	// Preamble is marker-free text found before the first header. It is
	// not part of any block.
	Preamble string
}

// String renders the blocks separated by blank lines. The preamble is not
// rendered.
func (d Document) String() string {
	return Assemble(d.Blocks)
}

// Assemble joins blocks into a document.
func Assemble(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// Parse splits text into typed blocks. When the text has no block headers at
// all, blocks are derived from blank-line separated paragraphs and their
// markers.
func Parse(text string) Document {
	lines := dropTopHeader(strings.Split(normalizeNewlines(text), "\n"))

	var headerAt []int
	for i, line := range lines {
		if _, ok := headerKind(line); ok {
			headerAt = append(headerAt, i)
		}
	}

	if len(headerAt) == 0 {
		return Document{Blocks: splitParagraphs(strings.Join(lines, "\n"))}
	}

	var doc Document
	if pre := strings.TrimSpace(strings.Join(lines[:headerAt[0]], "\n")); pre != "" {
		if _, ok := classify(pre); ok {
			doc.Blocks = append(doc.Blocks, splitParagraphs(pre)...)
		} else {
			doc.Preamble = pre
		}
	}

	for n, start := range headerAt {
		end := len(lines)
		if n+1 < len(headerAt) {
			end = headerAt[n+1]
		}
		kind, _ := headerKind(lines[start])
		doc.Blocks = append(doc.Blocks, Block{
			Kind:   kind,
			Header: strings.TrimSpace(lines[start]),
			Body:   strings.TrimSpace(strings.Join(lines[start+1:end], "\n")),
		})
	}
	return doc
}

// dropTopHeader removes the first non-blank line when it is a top-level
// "# " header.
func dropTopHeader(lines []string) []string {
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isTopHeader(line) {
			out := make([]string, 0, len(lines)-1)
			out = append(out, lines[:i]...)
			return append(out, lines[i+1:]...)
		}
		return lines
	}
	return lines
}

func paragraphs(text string) []string {
	var (
		out []string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

// splitParagraphs groups paragraphs into blocks. Paragraphs without markers
// are question stems and attach to the next paragraph that has markers. A
// paragraph that opens with a marker line and directly follows a marker
// paragraph of the same kind continues that block (options separated by blank
// lines); a paragraph opening with its own question text starts a new one.
// Trailing marker-free text becomes a SingleChoice block.
func splitParagraphs(text string) []Block {
	var (
		blocks     []Block
		stems      []string
		lastMarked bool
	)
	for _, p := range paragraphs(text) {
		kind, ok := classify(p)
		if !ok {
			stems = append(stems, p)
			lastMarked = false
			continue
		}
		if len(stems) == 0 && lastMarked && blocks[len(blocks)-1].Kind == kind && opensWithMarker(p) {
			blocks[len(blocks)-1].Body += "\n\n" + p
			continue
		}
		body := strings.Join(append(stems, p), "\n\n")
		stems = nil
		blocks = append(blocks, Block{Kind: kind, Header: kind.Header(), Body: body, Inferred: true})
		lastMarked = true
	}
	if len(stems) > 0 {
		blocks = append(blocks, Block{
			Kind:     api.KindSingleChoice,
			Header:   api.KindSingleChoice.Header(),
			Body:     strings.Join(stems, "\n\n"),
			Inferred: true,
		})
	}
	return blocks
}

// opensWithMarker reports whether the first non-blank line of p is a marker
// line.
func opensWithMarker(p string) bool {
	for _, line := range strings.Split(p, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		_, ok := markerKind(line)
		return ok
	}
	return false
}
