package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksNewChunksDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Invalid call NewChunksDBHandler with nil database", func(t *testing.T) {
		_, err := NewChunksDBHandler(nil, 3, false)
		require.Error(t, err, "Expected error when creating ChunksDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})

	t.Run("Invalid embedding dimension", func(t *testing.T) {
		_, err := NewChunksDBHandler(database, 0, false)
		assert.Error(t, err, "Expected error for zero embedding dimension")
	})
}

func TestChunksInsertAndSelect(t *testing.T) {
	database := initDB(t)
	handlers := initHandlers(t, database)
	ctx := context.Background()

	journal := insertTestJournal(t, handlers, "Chunked journal "+uuid.NewString())
	contents := []struct {
		text      string
		embedding []float32
	}{
		{"Zingiber officinale reduces headache intensity.", []float32{0, 0.6, 0.8}},
		{"Gingerol shows anti-inflammatory activity.", []float32{0, 0.8, 0.6}},
		{"Centella asiatica supports wound healing.", []float32{1, 0, 0}},
	}

	var inserted []*model.Chunk
	for i, content := range contents {
		chunk := &model.Chunk{
			JournalRID: journal.RID,
			ChunkIndex: i + 1,
			Content:    content.text,
			WordCount:  5,
			CharCount:  len(content.text),
			Embedding:  content.embedding,
			Metadata:   model.Metadata{"first_sentence": i*9 + 1},
		}
		require.NoError(t, handlers.chunks.InsertChunk(ctx, chunk), "Expected InsertChunk to not return an error")
		inserted = append(inserted, chunk)
	}

	t.Run("Insert fills generated fields", func(t *testing.T) {
		assert.NotZero(t, inserted[0].ID, "Expected chunk id")
		assert.Equal(t, journal.ID, inserted[0].JournalID, "Expected journal id")
		assert.Equal(t, []float32{0, 0.6, 0.8}, inserted[0].Embedding, "Expected stored embedding")
	})

	t.Run("Insert for unknown journal fails", func(t *testing.T) {
		err := handlers.chunks.InsertChunk(ctx, &model.Chunk{JournalRID: uuid.New(), ChunkIndex: 1, Content: "Orphan chunk text.", Embedding: []float32{1, 0, 0}})
		assert.Error(t, err, "Expected error for unknown journal")
	})

	t.Run("Select chunk", func(t *testing.T) {
		chunk, err := handlers.chunks.SelectChunk(ctx, inserted[1].ID)
		require.NoError(t, err, "Expected SelectChunk to not return an error")
		assert.Equal(t, contents[1].text, chunk.Content, "Expected content to match")
		assert.Equal(t, journal.RID, chunk.JournalRID, "Expected journal rid to match")
		assert.EqualValues(t, 10, chunk.Metadata["first_sentence"], "Expected metadata to match")
	})

	t.Run("Select chunks by journal in order", func(t *testing.T) {
		chunks, err := handlers.chunks.SelectChunksByJournal(ctx, journal.RID)
		require.NoError(t, err, "Expected SelectChunksByJournal to not return an error")
		require.Len(t, chunks, 3, "Expected all chunks of the journal")
		for i, chunk := range chunks {
			assert.Equal(t, i+1, chunk.ChunkIndex, "Expected chunks ordered by index")
		}
	})

	t.Run("Select chunks by similarity", func(t *testing.T) {
		chunks, err := handlers.chunks.SelectChunksBySimilarity(ctx, []float32{0, 0.6, 0.8}, 2, 0.5)
		require.NoError(t, err, "Expected SelectChunksBySimilarity to not return an error")
		require.Len(t, chunks, 2, "Expected the two similar chunks")
		assert.Equal(t, inserted[0].ID, chunks[0].ID, "Expected identical vector first")
		assert.InDelta(t, 1.0, chunks[0].Similarity, 0.0001, "Expected similarity one for identical vectors")
		assert.InDelta(t, 0.96, chunks[1].Similarity, 0.0001, "Expected cosine similarity of the second chunk")
		assert.Nil(t, chunks[0].Embedding, "Expected embeddings not to be loaded")
	})

	t.Run("Delete chunks by journal", func(t *testing.T) {
		err := handlers.chunks.DeleteChunksByJournal(ctx, journal.RID)
		require.NoError(t, err, "Expected DeleteChunksByJournal to not return an error")

		chunks, err := handlers.chunks.SelectChunksByJournal(ctx, journal.RID)
		require.NoError(t, err, "Expected SelectChunksByJournal to not return an error")
		assert.Empty(t, chunks, "Expected no chunks left")
	})
}
