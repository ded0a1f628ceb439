package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/herbrag/helper"
)

// Vector index types of the chunk embeddings.
const (
	IndexHNSW    = "hnsw"
	IndexIVFFlat = "ivfflat"
)

// ChangeIndexType rebuilds the cosine index of the chunk embeddings.
// Supported params are "m" and "ef_construction" for hnsw (defaults 16 and 64)
// and "lists" for ivfflat (default 100).
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	var createIndexSQL string
	switch indexType {
	case IndexHNSW:
		m := intParam(params, "m", 16)
		efConstruction := intParam(params, "ef_construction", 64)
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)
	case IndexIVFFlat:
		lists := intParam(params, "lists", 100)
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use '%s' or '%s')", indexType, IndexHNSW, IndexIVFFlat))
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.DatabaseError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.DatabaseError("drop index", err)
	}
	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.DatabaseError("create index", err)
	}
	err = tx.Commit()
	if err != nil {
		return helper.DatabaseError("commit index", err)
	}

	h.db.Logger.Info("Changed vector index", slog.String("type", indexType), slog.Any("params", params))

	return nil
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if value, ok := params[key].(int); ok && value > 0 {
		return value
	}
	return fallback
}
