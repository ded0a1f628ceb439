package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/herbrag/model"
)

const (
	bodyMarker        = "Isi:"
	minSentenceLength = 10
)

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s+`)

// SentenceWindowChunker creates a chunker with overlapping sentence windows.
func SentenceWindowChunker(sentencesPerChunk int, overlapSentences int) ChunkFunc {
	return func(text string) ([]*model.Chunk, error) {
		return CreateChunks(text, sentencesPerChunk, overlapSentences)
	}
}

// CreateChunks slides a window of sentencesPerChunk sentences over the text,
// advancing by sentencesPerChunk - overlapSentences. Consecutive chunks share
// overlapSentences sentences and the last window ends at the last sentence.
func CreateChunks(text string, sentencesPerChunk int, overlapSentences int) ([]*model.Chunk, error) {
	if sentencesPerChunk <= 0 {
		return nil, fmt.Errorf("sentences per chunk must be positive")
	}
	if overlapSentences < 0 || overlapSentences >= sentencesPerChunk {
		return nil, fmt.Errorf("overlap sentences must be in [0, %d)", sentencesPerChunk)
	}

	if idx := strings.Index(text, bodyMarker); idx >= 0 {
		text = text[idx+len(bodyMarker):]
	}

	sentences := SplitSentences(text)
	stride := sentencesPerChunk - overlapSentences

	chunks := []*model.Chunk{}
	for start := 0; start < len(sentences); start += stride {
		end := min(start+sentencesPerChunk, len(sentences))
		content := strings.Join(sentences[start:end], " ")

		chunks = append(chunks, &model.Chunk{
			ChunkIndex: len(chunks) + 1,
			Content:    content,
			WordCount:  len(strings.Fields(content)),
			CharCount:  utf8.RuneCountInString(content),
			Metadata: model.Metadata{
				"first_sentence": start + 1,
				"last_sentence":  end,
			},
		})

		if end == len(sentences) {
			break
		}
	}

	return chunks, nil
}

// SplitSentences splits at ., ! or ? followed by whitespace and drops
// sentences of ten characters or less.
func SplitSentences(text string) []string {
	var sentences []string
	appendSentence := func(s string) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minSentenceLength {
			sentences = append(sentences, s)
		}
	}

	start := 0
	for _, loc := range sentenceBoundaryRe.FindAllStringIndex(text, -1) {
		appendSentence(text[start : loc[0]+1])
		start = loc[1]
	}
	appendSentence(text[start:])

	return sentences
}
