package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	loadSql "github.com/siherrmann/herbrag/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(ctx context.Context, chunk *model.Chunk) error
	DeleteChunksByJournal(ctx context.Context, journalRID uuid.UUID) error
	SelectChunk(ctx context.Context, id int) (*model.Chunk, error)
	SelectChunksByJournal(ctx context.Context, journalRID uuid.UUID) ([]*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
	ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// The journals table has to exist already.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with a vector column of embeddingDim
// and its HNSW index if they do not exist.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.DatabaseError("init chunks", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a chunk of the journal referenced by chunk.JournalRID.
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *model.Chunk) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7)`,
		chunk.JournalRID,
		chunk.ChunkIndex,
		chunk.Content,
		chunk.WordCount,
		chunk.CharCount,
		pgvector.NewVector(chunk.Embedding),
		chunk.Metadata,
	)

	err := scanChunk(row, chunk)
	if err != nil {
		return helper.DatabaseError("scan", err)
	}

	return nil
}

// DeleteChunksByJournal deletes all chunks of a journal.
func (h *ChunksDBHandler) DeleteChunksByJournal(ctx context.Context, journalRID uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_chunks_by_journal($1)`, journalRID)
	if err != nil {
		return helper.DatabaseError("exec", err)
	}
	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, id int) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_chunk($1)`, id)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk)
	if err != nil {
		return nil, helper.DatabaseError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByJournal retrieves all chunks of a journal ordered by chunk index.
func (h *ChunksDBHandler) SelectChunksByJournal(ctx context.Context, journalRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_chunks_by_journal($1)`, journalRID)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.DatabaseError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity returns the limit chunks closest to embedding by cosine
// distance with a similarity of at least threshold, most similar first.
// Embeddings are not loaded.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3)`,
		pgvector.NewVector(embedding),
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.JournalID,
			&chunk.JournalRID,
			&chunk.ChunkIndex,
			&chunk.Content,
			&chunk.WordCount,
			&chunk.CharCount,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.DatabaseError("rows error", err)
	}

	return chunks, nil
}

func scanChunk(row rowScanner, chunk *model.Chunk) error {
	var embedding pgvector.Vector
	err := row.Scan(
		&chunk.ID,
		&chunk.JournalID,
		&chunk.JournalRID,
		&chunk.ChunkIndex,
		&chunk.Content,
		&chunk.WordCount,
		&chunk.CharCount,
		&embedding,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return err
	}

	chunk.Embedding = embedding.Slice()
	return nil
}
