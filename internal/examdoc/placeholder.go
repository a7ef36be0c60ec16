package examdoc

import (
	"fmt"

	"github.com/petrijr/quizforge/pkg/api"
)

// Placeholder returns a deterministic, structurally valid question used when
// generation for spec failed.
func Placeholder(spec api.QuestionSpec) string {
	stem := fmt.Sprintf("Question about %s, difficulty %s.", spec.Topic, spec.Difficulty)
	switch spec.Kind {
	case api.KindMultipleChoice:
		return api.KindMultipleChoice.Header() + "\n\n" + stem + "\n\n" +
			"- [x] Correct option 1\n" +
			"- [ ] Wrong option 1\n" +
			"- [x] Correct option 2\n" +
			"- [ ] Wrong option 2"
	case api.KindFillBlank:
		return api.KindFillBlank.Header() + "\n\n" +
			fmt.Sprintf("Fill in the blank about %s (difficulty %s): ______.", spec.Topic, spec.Difficulty) + "\n\n" +
			"- R:= correct answer"
	default:
		return api.KindSingleChoice.Header() + "\n\n" + stem + "\n\n" +
			"- (x) Correct option\n" +
			"- ( ) Wrong option 1\n" +
			"- ( ) Wrong option 2\n" +
			"- ( ) Wrong option 3"
	}
}
