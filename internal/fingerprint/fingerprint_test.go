package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petrijr/quizforge/pkg/api"
)

func TestKey_MatchesDocumentedLayout(t *testing.T) {
	spec := api.QuestionSpec{Kind: api.KindSingleChoice, Topic: "加法", Difficulty: api.DifficultyEasy}
	sum := md5.Sum([]byte("加法|easy|singleChoice"))
	assert.Equal(t, hex.EncodeToString(sum[:]), Key(spec))

	spec.Reference = "chapter 1"
	sum = md5.Sum([]byte("加法|easy|singleChoice|chapter 1"))
	assert.Equal(t, hex.EncodeToString(sum[:]), Key(spec))
}

func TestKey_Deterministic(t *testing.T) {
	spec := api.QuestionSpec{Kind: api.KindFillBlank, Topic: "rivers", Difficulty: api.DifficultyHard, Reference: "the Nile"}
	first := Key(spec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Key(spec))
	}
	assert.Len(t, first, 32)
}

func TestKey_DiffersWhenAnyInputDiffers(t *testing.T) {
	base := api.QuestionSpec{Kind: api.KindSingleChoice, Topic: "t", Difficulty: api.DifficultyEasy, Reference: "r"}
	variants := []api.QuestionSpec{
		{Kind: api.KindMultipleChoice, Topic: "t", Difficulty: api.DifficultyEasy, Reference: "r"},
		{Kind: api.KindSingleChoice, Topic: "u", Difficulty: api.DifficultyEasy, Reference: "r"},
		{Kind: api.KindSingleChoice, Topic: "t", Difficulty: api.DifficultyHard, Reference: "r"},
		{Kind: api.KindSingleChoice, Topic: "t", Difficulty: api.DifficultyEasy, Reference: "s"},
		{Kind: api.KindSingleChoice, Topic: "t", Difficulty: api.DifficultyEasy},
	}
	seen := map[string]bool{Key(base): true}
	for _, v := range variants {
		k := Key(v)
		assert.False(t, seen[k], "collision for %+v", v)
		seen[k] = true
	}
}

func TestKey_OnlyFirst500ReferenceCharactersCount(t *testing.T) {
	prefix := strings.Repeat("参", ReferencePrefixLen)
	a := api.QuestionSpec{Kind: api.KindSingleChoice, Topic: "t", Difficulty: api.DifficultyEasy, Reference: prefix + "tail one"}
	b := a
	b.Reference = prefix + "another tail"

	assert.Equal(t, Key(a), Key(b))

	c := a
	c.Reference = prefix
	assert.Equal(t, Key(a), Key(c))
}
