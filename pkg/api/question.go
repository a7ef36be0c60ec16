package api

import (
	"fmt"
	"strings"
)

// QuestionKind identifies the structural type of a question block.
// The string value is the wire code used in requests and cache keys.
type QuestionKind string

const (
	KindSingleChoice   QuestionKind = "singleChoice"
	KindMultipleChoice QuestionKind = "multipleChoice"
	KindFillBlank      QuestionKind = "fillBlank"
)

// Kinds lists every supported kind in canonical order.
var Kinds = []QuestionKind{KindSingleChoice, KindMultipleChoice, KindFillBlank}

var kindAliases = map[string]QuestionKind{
	"singlechoice":    KindSingleChoice,
	"single":          KindSingleChoice,
	"single_choice":   KindSingleChoice,
	"单选题":             KindSingleChoice,
	"multiplechoice":  KindMultipleChoice,
	"multiple":        KindMultipleChoice,
	"multiple_choice": KindMultipleChoice,
	"多选题":             KindMultipleChoice,
	"fillblank":       KindFillBlank,
	"fill":            KindFillBlank,
	"fill_blank":      KindFillBlank,
	"填空题":             KindFillBlank,
}

// ParseQuestionKind resolves a kind from its wire code, label or one of the
// accepted aliases. Matching is case-insensitive.
func ParseQuestionKind(s string) (QuestionKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown question kind %q", s)
}

// Valid reports whether k is one of the supported kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindSingleChoice, KindMultipleChoice, KindFillBlank:
		return true
	}
	return false
}

// Label is the name used in block headers, e.g. "SingleChoice".
func (k QuestionKind) Label() string {
	switch k {
	case KindSingleChoice:
		return "SingleChoice"
	case KindMultipleChoice:
		return "MultipleChoice"
	case KindFillBlank:
		return "FillBlank"
	}
	return string(k)
}

// Header is the canonical block header line for k.
func (k QuestionKind) Header() string {
	return "## " + k.Label()
}

// ToolName is the tool name under which generation of k is tracked.
func (k QuestionKind) ToolName() string {
	switch k {
	case KindSingleChoice:
		return "generate_single_choice_question"
	case KindMultipleChoice:
		return "generate_multiple_choice_question"
	case KindFillBlank:
		return "generate_fill_blank_question"
	}
	return "generate_question"
}

// Difficulty is the requested difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium and hard in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// QuestionSpec describes one question to generate. It is a pure value.
type QuestionSpec struct {
	Kind       QuestionKind `json:"kind"`
	Topic      string       `json:"topic"`
	Difficulty Difficulty   `json:"difficulty"`
	Reference  string       `json:"reference,omitempty"`
}

func (s QuestionSpec) String() string {
	return fmt.Sprintf("%s/%s/%s", s.Kind, s.Topic, s.Difficulty)
}
