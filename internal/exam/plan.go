package exam

import (
	"fmt"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

// TypeCount is the number of questions planned for one kind.
type TypeCount struct {
	Kind  api.QuestionKind `json:"kind"`
	Count int              `json:"count"`
}

// Plan is the ordered list of questions to generate.
type Plan struct {
	Summary    string             `json:"plan"`
	TypeCounts []TypeCount        `json:"type_counts"`
	Specs      []api.QuestionSpec `json:"specs"`
}

// PlanContent splits md.Count over md.Types: every kind gets Count/len(Types)
// and the remainder goes one each to the first kinds. Topics are assigned
// round-robin in question order. Every spec carries reference.
func PlanContent(md Metadata, reference string) Plan {
	types := md.Types
	if len(types) == 0 {
		types = []api.QuestionKind{api.KindSingleChoice}
	}
	topics := md.Topics
	if len(topics) == 0 {
		topics = []string{"general"}
	}

	per, rem := md.Count/len(types), md.Count%len(types)

	var p Plan
	var parts []string
	n := 0
	for i, kind := range types {
		c := per
		if i < rem {
			c++
		}
		p.TypeCounts = append(p.TypeCounts, TypeCount{Kind: kind, Count: c})
		if c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, kind.Label()))
		}
		for j := 0; j < c; j++ {
			p.Specs = append(p.Specs, api.QuestionSpec{
				Kind:       kind,
				Topic:      topics[n%len(topics)],
				Difficulty: md.Difficulty,
				Reference:  reference,
			})
			n++
		}
	}
	p.Summary = "generate " + strings.Join(parts, " and ")
	return p
}
