package examdoc

import (
	"regexp"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// Normalize brings a generated question of the given kind into canonical
// form: the first line becomes the kind's canonical header and the kind's
// markers are rewritten to their canonical spelling. Text that is already
// canonical is returned unchanged.
func Normalize(kind api.QuestionKind, content string) string {
	lines := dropTopHeader(strings.Split(strings.TrimSpace(normalizeNewlines(content)), "\n"))
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	if len(lines) > 0 && namesKind(lines[0], kind) {
		lines = lines[1:]
	}

	for i, line := range lines {
		lines[i] = normalizeLine(line, kind)
	}

	body := strings.TrimSpace(strings.Join(lines, "\n"))
	if body == "" {
		return kind.Header()
	}
	return kind.Header() + "\n\n" + body
}

// namesKind reports whether line is a header, or a bare title naming kind,
// that should be replaced by the canonical header. A question line that merely
// starts with the kind's name is not a title.
func namesKind(line string, kind api.QuestionKind) bool {
	if isAnyHeader(line) {
		return true
	}
	re, ok := kindTitleRes[kind]
	return ok && re.MatchString(strings.TrimSpace(line))
}

// kindTitleRes match a line holding nothing but a kind name, optionally with
// leading "#" marks, a trailing "question(s)", a numeral or a colon.
var kindTitleRes = map[api.QuestionKind]*regexp.Regexp{
	api.KindSingleChoice:   kindTitleRe(`single\s*choice|单选题`),
	api.KindMultipleChoice: kindTitleRe(`multiple\s*choice|多选题`),
	api.KindFillBlank:      kindTitleRe(`fill\s*(in\s*the\s*)?blanks?|填空题`),
}

func kindTitleRe(names string) *regexp.Regexp {
	return regexp.MustCompile(`^(?i)#*\s*(` + names + `)(\s+questions?)?\s*\d*\s*[:：]?$`)
}
