package examdoc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// ErrStructuralValidation is returned when a document still violates the
// grammar after the repair pass.
var ErrStructuralValidation = errors.New("exam document failed structural validation")

// Issue describes one grammar violation. Block is the 0-based block index,
// or -1 for document-level problems.
type Issue struct {
	Block   int
	Kind    api.QuestionKind
	Message string
}

func (i Issue) String() string {
	if i.Block < 0 {
		return i.Message
	}
	return fmt.Sprintf("block %d (%s): %s", i.Block+1, i.Kind.Label(), i.Message)
}

// Result is the outcome of Validate.
type Result struct {
	// Valid reports the final outcome, after the repair pass if one ran.
	Valid bool

	// Document is the input when it was valid as given, otherwise the
	// repaired document.
	Document string

	// Repaired is set when the repair pass ran.
	Repaired bool

	// Issues lists the violations of Document. Empty when Valid.
	Issues []Issue

	// InitialIssues lists the violations found before repairing.
	InitialIssues []Issue
}

// Err returns nil for a valid result and ErrStructuralValidation wrapped with
// the issue list otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		msgs = append(msgs, is.String())
	}
	return fmt.Errorf("%w: %s", ErrStructuralValidation, strings.Join(msgs, "; "))
}

// Validate checks text against the grammar and repairs it once when needed.
func Validate(text string) Result {
	issues := Parse(text).Check()
	if len(issues) == 0 {
		return Result{Valid: true, Document: text}
	}

	repaired := Repair(text)
	final := Parse(repaired).Check()
	return Result{
		Valid:         len(final) == 0,
		Document:      repaired,
		Repaired:      true,
		Issues:        final,
		InitialIssues: issues,
	}
}

// Check validates every block of d without repairing.
func (d Document) Check() []Issue {
	if len(d.Blocks) == 0 {
		return []Issue{{Block: -1, Message: "document contains no question blocks"}}
	}
	var issues []Issue
	for i, b := range d.Blocks {
		if msg := checkBlock(b); msg != "" {
			issues = append(issues, Issue{Block: i, Kind: b.Kind, Message: msg})
		}
	}
	return issues
}

// ValidBlock reports whether a single block satisfies its kind's rule.
func ValidBlock(b Block) bool {
	return checkBlock(b) == ""
}

func checkBlock(b Block) string {
	lines := strings.Split(b.Body, "\n")
	switch b.Kind {
	case api.KindSingleChoice:
		options, correct := countMarkers(lines, singleMarkerRe)
		if options == 0 {
			return "no options found"
		}
		if correct != 1 {
			return fmt.Sprintf("expected exactly one correct option, found %d", correct)
		}
	case api.KindMultipleChoice:
		options, correct := countMarkers(lines, multipleMarkerRe)
		if options == 0 {
			return "no options found"
		}
		if correct < 1 {
			return "expected at least one correct option, found none"
		}
	case api.KindFillBlank:
		answers := 0
		for _, line := range lines {
			if fillMarkerRe.MatchString(line) {
				answers++
			}
		}
		if answers == 0 {
			return "no answer line found"
		}
	default:
		return fmt.Sprintf("unknown question kind %q", b.Kind)
	}
	return ""
}

func countMarkers(lines []string, re *regexp.Regexp) (options, correct int) {
	for _, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		options++
		if m[1] == "x" {
			correct++
		}
	}
	return options, correct
}

// Check validates text as given, without the repair pass.
func Check(text string) error {
	issues := Parse(text).Check()
	return Result{Valid: len(issues) == 0, Document: text, Issues: issues}.Err()
}
