package exam

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// ErrInvalidRequest marks problems with the request inputs.
var ErrInvalidRequest = errors.New("invalid exam request")

// Metadata is the normalized description of a requested exam.
type Metadata struct {
	Grade        string             `json:"grade"`
	Subject      string             `json:"subject"`
	Types        []api.QuestionKind `json:"types"`
	Count        int                `json:"count"`
	Difficulty   api.Difficulty     `json:"difficulty"`
	Topics       []string           `json:"topics"`
	Reference    string             `json:"reference,omitempty"`
	TeacherNotes string             `json:"teacher_notes,omitempty"`
}

// Defaults fill in what a request leaves out.
type Defaults struct {
	Count      int
	Difficulty api.Difficulty

	// MaxCount is the largest count a request may ask for.
	MaxCount int
}

// DefaultMaxCount bounds the question count when Defaults.MaxCount is unset.
const DefaultMaxCount = 50

// StandardDefaults are five questions of medium difficulty, at most fifty.
var StandardDefaults = Defaults{Count: 5, Difficulty: api.DifficultyMedium, MaxCount: DefaultMaxCount}

// ExtractMetadata normalizes request inputs using StandardDefaults.
func ExtractMetadata(inputs map[string]any) (Metadata, error) {
	return StandardDefaults.Extract(inputs)
}

// Extract normalizes request inputs. Types and topics may be given as a
// comma separated string or a list.
func (d Defaults) Extract(inputs map[string]any) (Metadata, error) {
	if d.Count <= 0 {
		d.Count = StandardDefaults.Count
	}
	if d.Difficulty == "" {
		d.Difficulty = StandardDefaults.Difficulty
	}
	if d.MaxCount <= 0 {
		d.MaxCount = DefaultMaxCount
	}

	md := Metadata{
		Grade:        stringInput(inputs, "grade"),
		Subject:      stringInput(inputs, "subject"),
		Reference:    stringInput(inputs, "reference"),
		TeacherNotes: stringInput(inputs, "teacher_notes"),
		Count:        d.Count,
		Difficulty:   d.Difficulty,
	}

	if raw, ok := inputs["count"]; ok && raw != nil && raw != "" {
		n, err := toInt(raw)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: count: %v", ErrInvalidRequest, err)
		}
		if n <= 0 {
			return Metadata{}, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidRequest, n)
		}
		if n > d.MaxCount {
			return Metadata{}, fmt.Errorf("%w: count must be at most %d, got %d", ErrInvalidRequest, d.MaxCount, n)
		}
		md.Count = n
	}

	if s := stringInput(inputs, "difficulty"); s != "" {
		diff, err := api.ParseDifficulty(s)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		md.Difficulty = diff
	}

	seen := map[api.QuestionKind]bool{}
	for _, name := range listInput(inputs, "types") {
		kind, err := api.ParseQuestionKind(name)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if !seen[kind] {
			seen[kind] = true
			md.Types = append(md.Types, kind)
		}
	}
	if len(md.Types) == 0 {
		md.Types = []api.QuestionKind{api.KindSingleChoice}
	}

	md.Topics = listInput(inputs, "topics")
	if len(md.Topics) == 0 {
		if md.Subject != "" {
			md.Topics = []string{md.Subject}
		} else {
			md.Topics = []string{"general"}
		}
	}
	return md, nil
}

func stringInput(inputs map[string]any, key string) string {
	v, ok := inputs[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func listInput(inputs map[string]any, key string) []string {
	var parts []string
	switch v := inputs[key].(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			if item != nil {
				parts = append(parts, fmt.Sprint(item))
			}
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("not a whole number: %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
