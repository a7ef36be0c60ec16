package generation

import (
	"fmt"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// Settings are the per-request generation parameters.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

const (
	DefaultModel       = "claude-3-7-sonnet-20250219"
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.7
)

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{Model: DefaultModel, MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
}

type kindPrompt struct {
	noun         string
	requirements []string
	example      []string
}

var kindPrompts = map[api.QuestionKind]kindPrompt{
	api.KindSingleChoice: {
		noun: "single choice question",
		requirements: []string{
			"Provide 4 options, exactly 1 of which is correct.",
		},
		example: []string{
			"- (x) [correct option]",
			"- ( ) [wrong option 1]",
			"- ( ) [wrong option 2]",
			"- ( ) [wrong option 3]",
		},
	},
	api.KindMultipleChoice: {
		noun: "multiple choice question",
		requirements: []string{
			"Provide 4 to 6 options, 2 to 4 of which are correct.",
		},
		example: []string{
			"- [x] [correct option 1]",
			"- [ ] [wrong option 1]",
			"- [x] [correct option 2]",
			"- [ ] [wrong option 2]",
		},
	},
	api.KindFillBlank: {
		noun: "fill-in-the-blank question",
		requirements: []string{
			"Mark each blank in the question text with ______.",
			"List one answer line per blank, in order.",
		},
		example: []string{
			"- R:= [answer for the first blank]",
		},
	},
}

// Prompt builds the user prompt asking for one question of spec.Kind in the
// canonical block format.
func Prompt(spec api.QuestionSpec) string {
	kp, ok := kindPrompts[spec.Kind]
	if !ok {
		kp = kindPrompts[api.KindSingleChoice]
	}
	if spec.Kind == api.KindFillBlank {
		kp.example = append([]string{"[question text containing ______]", ""}, kp.example...)
	} else {
		kp.example = append([]string{"[question text]", ""}, kp.example...)
	}

	header := spec.Kind.Header()
	if !spec.Kind.Valid() {
		header = api.KindSingleChoice.Header()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write one %s about %q at difficulty level %q.\n\n", kp.noun, spec.Topic, spec.Difficulty)
	b.WriteString("Requirements:\n")
	n := 1
	for _, r := range append([]string{"The question must be clear, accurate and unambiguous."}, kp.requirements...) {
		fmt.Fprintf(&b, "%d. %s\n", n, r)
		n++
	}
	fmt.Fprintf(&b, "%d. Options must be plausible and relevant.\n", n)
	fmt.Fprintf(&b, "%d. The difficulty must match the %q level.\n\n", n+1, spec.Difficulty)

	b.WriteString("Use exactly this format:\n\n")
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(kp.example, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Do not add any other headings, numbering or explanations. The header is exactly %q.", header)

	if ref := strings.TrimSpace(spec.Reference); ref != "" {
		b.WriteString("\n\nBase the question on the following reference material:\n")
		b.WriteString(ref)
	}
	return b.String()
}

// NewRequest builds the generation request for spec.
func NewRequest(spec api.QuestionSpec, s Settings) api.GenerationRequest {
	return api.GenerationRequest{
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		Messages:    []api.Message{{Role: "user", Content: Prompt(spec)}},
	}
}
