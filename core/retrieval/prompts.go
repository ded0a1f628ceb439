package retrieval

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/herbrag/model"
)

// NoResultsAnswer is returned when neither chunks nor herbs were found.
const NoResultsAnswer = "Sorry, no relevant information about this question was found in the available journals."

// FailedAnswer is returned when the answer could not be generated.
const FailedAnswer = "Sorry, an error occurred while generating the answer. Please try again later."

func queryEntityPrompt(query string) string {
	return fmt.Sprintf(`Identify the medical and botanical entities in this question about herbal medicine.

Entity types:
- SYMPTOM: complaints and symptoms (e.g. "headache", "nausea", "cough")
- DISEASE: diseases and conditions (e.g. "hypertension", "diabetes")
- PLANT: herbs and medicinal plants (e.g. "ginger", "Curcuma longa")
- COMPOUND: chemical compounds (e.g. "curcumin", "gingerol")
- EFFECT: pharmacological effects (e.g. "anti-inflammatory", "analgesic")

Return ONLY a JSON array without explanations:
[{"name": "...", "type": "..."}]

Return [] if there are no entities.

Question: %s`, query)
}

// answerContext is everything the answer prompt is built from.
type answerContext struct {
	query        string
	chunks       []*model.VectorSearchResult
	herbs        []*model.Entity
	relations    []*model.GraphRelation
	chunkLength  int
	maxRelations int
}

func answerPrompt(c answerContext) string {
	var sb strings.Builder

	sb.WriteString("You are an assistant for herbal medicine research. Answer the question using only the context from academic journals below.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\n", c.query)

	sb.WriteString("Journal excerpts:\n")
	if len(c.chunks) == 0 {
		sb.WriteString("(none)\n")
	}
	for i, chunk := range c.chunks {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, truncate(chunk.Text, c.chunkLength))
	}

	sb.WriteString("\nHerbs found in the knowledge graph: ")
	if len(c.herbs) == 0 {
		sb.WriteString("(none)")
	}
	names := make([]string, len(c.herbs))
	for i, herb := range c.herbs {
		names[i] = herb.Name
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n")

	if len(c.relations) > 0 {
		sb.WriteString("\nKnown relations:\n")
		for i, relation := range c.relations {
			if i >= c.maxRelations {
				break
			}
			fmt.Fprintf(&sb, "- %s %s %s (%s)\n", relation.Source.Name, relation.Relation, relation.Target.Name, relation.Target.Type)
		}
	}

	sb.WriteString(`
Instructions:
- Answer the question directly.
- Mention every herb from the herb list, even if the evidence for it is weak.
- Include dosage and preparation information if the context contains any.
- Write 5 to 10 sentences.
- Do not add information that is not in the context.
`)

	return sb.String()
}

// citations returns the distinct journal titles of the chunks, at most limit.
func citations(chunks []*model.VectorSearchResult, limit int) []*model.JournalInfo {
	seen := make(map[string]struct{})
	infos := []*model.JournalInfo{}
	for _, chunk := range chunks {
		if len(infos) >= limit {
			break
		}
		if chunk.Journal == nil || chunk.Journal.Title == "" {
			continue
		}
		if _, ok := seen[chunk.Journal.Title]; ok {
			continue
		}
		seen[chunk.Journal.Title] = struct{}{}
		infos = append(infos, chunk.Journal)
	}
	return infos
}

func formatSources(infos []*model.JournalInfo) string {
	if len(infos) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nSources:")
	for i, info := range infos {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, info.Title)
		switch {
		case info.Author != "" && info.Year != "":
			fmt.Fprintf(&sb, " (%s, %s)", info.Author, info.Year)
		case info.Author != "":
			fmt.Fprintf(&sb, " (%s)", info.Author)
		case info.Year != "":
			fmt.Fprintf(&sb, " (%s)", info.Year)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
