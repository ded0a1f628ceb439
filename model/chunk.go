package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a window of consecutive sentences of a journal body.
type Chunk struct {
	ID         int       `json:"id"`
	JournalID  int64     `json:"journal_id"`
	JournalRID uuid.UUID `json:"journal_rid"`
	// ChunkIndex is the 1-based position of the chunk inside its journal.
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	WordCount  int       `json:"word_count"`
	CharCount  int       `json:"char_count"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}
