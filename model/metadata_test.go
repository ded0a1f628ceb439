package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValue(t *testing.T) {
	t.Run("Nil metadata is stored as empty object", func(t *testing.T) {
		var m Metadata

		value, err := m.Value()
		require.NoError(t, err, "Expected Value to not return an error")
		assert.Equal(t, []byte("{}"), value, "Expected empty JSON object")
	})

	t.Run("Metadata is stored as JSON", func(t *testing.T) {
		m := Metadata{"source": "pdf"}

		value, err := m.Value()
		require.NoError(t, err, "Expected Value to not return an error")
		assert.JSONEq(t, `{"source":"pdf"}`, string(value.([]byte)), "Expected JSON encoding")
	})
}

func TestMetadataScan(t *testing.T) {
	t.Run("Scan from JSON bytes", func(t *testing.T) {
		var m Metadata
		err := m.Scan([]byte(`{"pages": 12, "lang": "id"}`))

		require.NoError(t, err, "Expected Scan to not return an error")
		assert.Equal(t, float64(12), m["pages"], "Expected numeric value")
		assert.Equal(t, "id", m.String("lang"), "Expected string value")
	})

	t.Run("Scan from string", func(t *testing.T) {
		var m Metadata
		err := m.Scan(`{"lang": "en"}`)

		require.NoError(t, err, "Expected Scan to not return an error")
		assert.Equal(t, "en", m.String("lang"), "Expected string value")
	})

	t.Run("Scan from nil", func(t *testing.T) {
		m := Metadata{"stale": true}
		err := m.Scan(nil)

		require.NoError(t, err, "Expected Scan to not return an error")
		assert.Empty(t, m, "Expected metadata to be reset")
	})

	t.Run("Scan invalid type", func(t *testing.T) {
		var m Metadata
		err := m.Scan(42)

		assert.Error(t, err, "Expected error for unsupported type")
		assert.Contains(t, err.Error(), "unsupported type int", "Expected type to be named")
	})

	t.Run("Missing key reads as empty string", func(t *testing.T) {
		m := Metadata{"count": 3}
		assert.Equal(t, "", m.String("count"), "Expected non-string value to read as empty")
		assert.Equal(t, "", m.String("missing"), "Expected missing key to read as empty")
	})
}
