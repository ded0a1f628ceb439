package retrieval

import (
	"strings"
	"testing"

	"github.com/siherrmann/herbrag/model"
	"github.com/stretchr/testify/assert"
)

func TestAnswerPrompt(t *testing.T) {
	t.Run("Prompt contains truncated chunks herbs and limited relations", func(t *testing.T) {
		f := newHerbalFixture()
		prompt := answerPrompt(answerContext{
			query:        "Which herbs help against headache?",
			chunks:       []*model.VectorSearchResult{{Text: "Zingiber officinale reduced headache intensity."}},
			herbs:        []*model.Entity{f.ginger, f.willow},
			relations:    []*model.GraphRelation{f.containsGingerol, f.treatsMigraine, f.hasAnalgesic},
			chunkLength:  10,
			maxRelations: 2,
		})

		assert.Contains(t, prompt, "Question: Which herbs help against headache?", "Expected the question")
		assert.Contains(t, prompt, "[1] Zingiber o...", "Expected the chunk to be truncated")
		assert.Contains(t, prompt, "Herbs found in the knowledge graph: Zingiber officinale, Salix alba", "Expected the herb list")
		assert.Contains(t, prompt, "- Zingiber officinale contains gingerol (COMPOUND)", "Expected the first relation")
		assert.Contains(t, prompt, "- Salix alba treats migraine headache (DISEASE)", "Expected the second relation")
		assert.NotContains(t, prompt, "has_effect", "Expected relations beyond the limit to be left out")
		assert.Contains(t, prompt, "Mention every herb", "Expected the instructions")
	})

	t.Run("Prompt marks missing context", func(t *testing.T) {
		prompt := answerPrompt(answerContext{query: "Anything?", chunkLength: 500, maxRelations: 15})

		assert.Contains(t, prompt, "Journal excerpts:\n(none)", "Expected no excerpts marker")
		assert.Contains(t, prompt, "knowledge graph: (none)", "Expected no herbs marker")
		assert.NotContains(t, prompt, "Known relations", "Expected no relation section")
	})
}

func TestSources(t *testing.T) {
	t.Run("Citations are deduplicated by title and limited", func(t *testing.T) {
		chunks := []*model.VectorSearchResult{
			{Journal: &model.JournalInfo{Title: "A", Author: "X", Year: "2020"}},
			{Journal: nil},
			{Journal: &model.JournalInfo{Title: "A", Author: "X", Year: "2020"}},
			{Journal: &model.JournalInfo{Title: ""}},
			{Journal: &model.JournalInfo{Title: "B", Author: "Y"}},
			{Journal: &model.JournalInfo{Title: "C", Year: "2018"}},
		}

		infos := citations(chunks, 2)
		assert.Len(t, infos, 2, "Expected the limit to apply")
		assert.Equal(t, "A", infos[0].Title, "Expected the first title")
		assert.Equal(t, "B", infos[1].Title, "Expected the second distinct title")
	})

	t.Run("Sources list every available detail", func(t *testing.T) {
		sources := formatSources([]*model.JournalInfo{
			{Title: "A", Author: "X", Year: "2020"},
			{Title: "B", Author: "Y"},
			{Title: "C", Year: "2018"},
			{Title: "D"},
		})
		assert.Equal(t, "\n\nSources:\n1. A (X, 2020)\n2. B (Y)\n3. C (2018)\n4. D", sources, "Expected the formatted sources")
	})

	t.Run("No citations give no sources", func(t *testing.T) {
		assert.Equal(t, "", formatSources(nil), "Expected an empty string")
	})
}

func TestQueryEntityPrompt(t *testing.T) {
	prompt := queryEntityPrompt("Is ginger good for nausea?")
	assert.True(t, strings.HasSuffix(prompt, "Question: Is ginger good for nausea?"), "Expected the question at the end")
	assert.Contains(t, prompt, "JSON array", "Expected the output format")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3), "Expected no truncation at the limit")
	assert.Equal(t, "ab...", truncate("abc", 2), "Expected truncation beyond the limit")
	assert.Equal(t, "jamu...", truncate("jamuü", 4), "Expected truncation by runes")
	assert.Equal(t, "abc", truncate("abc", 0), "Expected no truncation without a limit")
}
