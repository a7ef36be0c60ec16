package examdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/quizforge/pkg/api"
)

func TestParse_DiscardsTopLevelHeader(t *testing.T) {
	d := Parse("# Weekly quiz\n\n## FillBlank\n\nx ______\n\n- R:= y")

	require.Len(t, d.Blocks, 1)
	assert.Equal(t, "## FillBlank", d.Blocks[0].Header)
	assert.Equal(t, "x ______\n\n- R:= y", d.Blocks[0].Body)
	assert.Empty(t, d.Preamble)
}

func TestParse_KeepsMarkerFreePreambleOutOfBlocks(t *testing.T) {
	d := Parse("Here is your exam:\n\n## SingleChoice\n\nQ\n\n- (x) A\n- ( ) B")

	require.Len(t, d.Blocks, 1)
	assert.Equal(t, "Here is your exam:", d.Preamble)
	assert.True(t, ValidBlock(d.Blocks[0]))
}

func TestParse_HeuristicSplitWithoutHeaders(t *testing.T) {
	text := "What is 1+1?\n\n- (x) 2\n- ( ) 3\n\n" +
		"Which are even?\n\n- [x] 2\n- [ ] 3\n\n" +
		"2+2 = ______\n\n- R:= 4\n\n" +
		"A trailing remark without markers."

	d := Parse(text)
	require.Len(t, d.Blocks, 4)

	assert.Equal(t, api.KindSingleChoice, d.Blocks[0].Kind)
	assert.Equal(t, "What is 1+1?\n\n- (x) 2\n- ( ) 3", d.Blocks[0].Body)
	assert.Equal(t, api.KindMultipleChoice, d.Blocks[1].Kind)
	assert.Equal(t, api.KindFillBlank, d.Blocks[2].Kind)

	// Marker-free paragraphs default to single choice.
	assert.Equal(t, api.KindSingleChoice, d.Blocks[3].Kind)
	assert.True(t, d.Blocks[3].Inferred)
	assert.Len(t, d.Check(), 1)
}

func TestParse_OptionsSplitByBlankLinesStayTogether(t *testing.T) {
	d := Parse("Q\n\n- (x) A\n\n- ( ) B")

	require.Len(t, d.Blocks, 1)
	assert.Equal(t, "Q\n\n- (x) A\n\n- ( ) B", d.Blocks[0].Body)
}

func TestParse_AdjacentQuestionsWithoutHeadersStaySeparate(t *testing.T) {
	d := Parse("1+1=?\n- (x) 2\n- ( ) 3\n\n2+2=?\n- (x) 4\n- ( ) 5")

	require.Len(t, d.Blocks, 2)
	assert.Equal(t, "1+1=?\n- (x) 2\n- ( ) 3", d.Blocks[0].Body)
	assert.Equal(t, "2+2=?\n- (x) 4\n- ( ) 5", d.Blocks[1].Body)
	assert.Empty(t, d.Check())
}

func TestParse_HandlesCRLF(t *testing.T) {
	d := Parse("## SingleChoice\r\n\r\nQ\r\n\r\n- (x) A\r\n- ( ) B\r\n")

	require.Len(t, d.Blocks, 1)
	assert.Empty(t, d.Check())
}

func TestAssemble(t *testing.T) {
	got := Assemble([]Block{
		{Kind: api.KindSingleChoice, Header: "## SingleChoice", Body: "Q\n\n- (x) A"},
		{Kind: api.KindFillBlank, Header: "## FillBlank", Body: "x\n\n- R:= y"},
	})
	assert.Equal(t, "## SingleChoice\n\nQ\n\n- (x) A\n\n## FillBlank\n\nx\n\n- R:= y", got)
}
