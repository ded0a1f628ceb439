package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeIndexType(t *testing.T) {
	database := initDB(t)
	handlers := initHandlers(t, database)
	ctx := context.Background()

	t.Run("Change index to HNSW with custom params", func(t *testing.T) {
		err := handlers.chunks.ChangeIndexType(ctx, IndexHNSW, map[string]interface{}{"m": 32, "ef_construction": 128})
		assert.NoError(t, err, "Expected ChangeIndexType to hnsw with custom params to not return an error")
	})

	t.Run("Change index to IVFFlat with default params", func(t *testing.T) {
		err := handlers.chunks.ChangeIndexType(ctx, IndexIVFFlat, map[string]interface{}{})
		assert.NoError(t, err, "Expected ChangeIndexType to ivfflat to not return an error")

		var method string
		err = database.Instance.QueryRow(`SELECT am.amname FROM pg_class c JOIN pg_am am ON am.oid = c.relam WHERE c.relname = 'idx_chunks_embedding'`).Scan(&method)
		require.NoError(t, err, "Expected index lookup to succeed")
		assert.Equal(t, IndexIVFFlat, method, "Expected ivfflat index access method")
	})

	t.Run("Unsupported index type keeps the index", func(t *testing.T) {
		err := handlers.chunks.ChangeIndexType(ctx, "invalid", nil)
		require.Error(t, err, "Expected error when using unsupported index type")
		assert.Contains(t, err.Error(), "unsupported index type", "Expected error message to mention unsupported index type")

		var exists bool
		err = database.Instance.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_class WHERE relname = 'idx_chunks_embedding')`).Scan(&exists)
		require.NoError(t, err, "Expected index lookup to succeed")
		assert.True(t, exists, "Expected existing index to survive")
	})

	t.Run("Expired context", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		err := handlers.chunks.ChangeIndexType(shortCtx, IndexHNSW, nil)
		assert.Error(t, err, "Expected error for expired context")
	})

	t.Run("Change index back to HNSW", func(t *testing.T) {
		err := handlers.chunks.ChangeIndexType(ctx, IndexHNSW, nil)
		assert.NoError(t, err, "Expected ChangeIndexType to hnsw to not return an error")
	})
}
