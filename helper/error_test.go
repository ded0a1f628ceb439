package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("Wrap error with trace", func(t *testing.T) {
		original := fmt.Errorf("connection refused")
		err := NewError("ping database", original)

		require.Error(t, err, "Expected NewError to return an error")
		assert.Equal(t, "ping database: connection refused", err.Error(), "Expected trace to prefix the message")
		assert.True(t, errors.Is(err, original), "Expected wrapped error to be unwrappable")
	})

	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, NewError("scan", nil), "Expected NewError to return nil for a nil error")
	})

	t.Run("Nested traces keep the sentinel reachable", func(t *testing.T) {
		err := NewError("hybrid search", NewError("embed query", Unavailable("embedder", fmt.Errorf("timeout"))))

		assert.ErrorIs(t, err, ErrCollaboratorUnavailable, "Expected collaborator sentinel to survive wrapping")
		assert.Contains(t, err.Error(), "hybrid search: embed query: embedder", "Expected all traces in the message")
	})
}

func TestParseError(t *testing.T) {
	t.Run("ParseError exposes content and cause", func(t *testing.T) {
		cause := fmt.Errorf("unexpected end of JSON input")
		err := NewError("parse response", &ParseError{Content: "{", Err: cause})

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), "Expected ParseError to be extractable")
		assert.Equal(t, "{", parseErr.Content, "Expected original content to be kept")
		assert.ErrorIs(t, err, cause, "Expected cause to be unwrappable")
	})
}

func TestUnavailable(t *testing.T) {
	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, Unavailable("llm", nil), "Expected Unavailable to return nil for a nil error")
	})

	t.Run("Collaborator name is part of the message", func(t *testing.T) {
		err := Unavailable("llm", fmt.Errorf("status 503"))
		assert.ErrorIs(t, err, ErrCollaboratorUnavailable, "Expected collaborator sentinel")
		assert.Contains(t, err.Error(), "llm", "Expected collaborator name in message")
		assert.Contains(t, err.Error(), "status 503", "Expected cause in message")
	})
}
