package examdoc

import (
	"regexp"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

var (
	// A single "#" followed by whitespace; "##" headers never match.
	topHeaderRe = regexp.MustCompile(`^#\s+\S`)

	blockHeaderRe = regexp.MustCompile(`^##\s*((?i:singlechoice|multiplechoice|fillblank)|单选题|多选题|填空题)\s*\d*\s*$`)

	// Lines that look like a kind header but carry extra decoration, e.g.
	// "### Single Choice (3 questions)". Only used when repairing.
	looseHeaderRe = regexp.MustCompile(`^#{2,}\s*((?i:single\s*choice|multiple\s*choice|fill\s*(in\s*the\s*)?blank)|单选题|多选题|填空题)`)

	singleMarkerRe   = regexp.MustCompile(`^\s*-\s*\((x| )\)`)
	multipleMarkerRe = regexp.MustCompile(`^\s*-\s*\[(x| )\]`)
	fillMarkerRe     = regexp.MustCompile(`^\s*-\s*R:=`)

	looseSingleCorrectRe   = regexp.MustCompile(`(?i)^\s*-\s*\(\s*x\s*\)\s*`)
	looseSingleOpenRe      = regexp.MustCompile(`^\s*-\s*\(\s*\)\s*`)
	looseMultipleCorrectRe = regexp.MustCompile(`(?i)^\s*-\s*\[\s*x\s*\]\s*`)
	looseMultipleOpenRe    = regexp.MustCompile(`^\s*-\s*\[\s*\]\s*`)
	looseFillRe            = regexp.MustCompile(`(?i)^\s*-\s*R\s*:=\s*`)
)

// headerKind returns the kind named by a block header line.
func headerKind(line string) (api.QuestionKind, bool) {
	m := blockHeaderRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	k, err := api.ParseQuestionKind(m[1])
	if err != nil {
		return "", false
	}
	return k, true
}

func isTopHeader(line string) bool {
	return topHeaderRe.MatchString(strings.TrimSpace(line))
}

func isAnyHeader(line string) bool {
	t := strings.TrimSpace(line)
	return blockHeaderRe.MatchString(t) || looseHeaderRe.MatchString(t)
}

// markerKind classifies a single line by the marker it starts with. Markers
// are matched leniently so that unnormalized input is still recognized.
func markerKind(line string) (api.QuestionKind, bool) {
	switch {
	case looseSingleCorrectRe.MatchString(line), looseSingleOpenRe.MatchString(line):
		return api.KindSingleChoice, true
	case looseMultipleCorrectRe.MatchString(line), looseMultipleOpenRe.MatchString(line):
		return api.KindMultipleChoice, true
	case looseFillRe.MatchString(line):
		return api.KindFillBlank, true
	}
	return "", false
}

// classify picks the kind of a paragraph from the markers it contains, with
// single choice taking precedence over multiple choice over fill blank.
func classify(text string) (api.QuestionKind, bool) {
	seen := make(map[api.QuestionKind]bool)
	for _, line := range strings.Split(text, "\n") {
		if k, ok := markerKind(line); ok {
			seen[k] = true
		}
	}
	for _, k := range api.Kinds {
		if seen[k] {
			return k, true
		}
	}
	return "", false
}

// normalizeLine rewrites the markers of the given kinds to canonical form.
func normalizeLine(line string, kinds ...api.QuestionKind) string {
	for _, k := range kinds {
		switch k {
		case api.KindSingleChoice:
			if looseSingleCorrectRe.MatchString(line) {
				return canonical("- (x)", looseSingleCorrectRe.ReplaceAllString(line, ""))
			}
			if looseSingleOpenRe.MatchString(line) {
				return canonical("- ( )", looseSingleOpenRe.ReplaceAllString(line, ""))
			}
		case api.KindMultipleChoice:
			if looseMultipleCorrectRe.MatchString(line) {
				return canonical("- [x]", looseMultipleCorrectRe.ReplaceAllString(line, ""))
			}
			if looseMultipleOpenRe.MatchString(line) {
				return canonical("- [ ]", looseMultipleOpenRe.ReplaceAllString(line, ""))
			}
		case api.KindFillBlank:
			if looseFillRe.MatchString(line) {
				return canonical("- R:=", looseFillRe.ReplaceAllString(line, ""))
			}
		}
	}
	return line
}

func canonical(marker, rest string) string {
	rest = strings.TrimRight(rest, " \t")
	if rest == "" {
		return marker
	}
	return marker + " " + rest
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
