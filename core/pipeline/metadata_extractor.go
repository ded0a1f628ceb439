package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/siherrmann/herbrag/core/textutil"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

var metadataKeys = []string{"title", "author", "year", "journal"}

// MetadataExtractor detects bibliographic metadata and page decorations in raw journal text.
type MetadataExtractor struct {
	completer    CompleteFunc
	sampleLength int
	logger       *slog.Logger
}

// NewMetadataExtractor creates a MetadataExtractor reading the first sampleLength characters.
func NewMetadataExtractor(completer CompleteFunc, sampleLength int, logger *slog.Logger) *MetadataExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataExtractor{
		completer:    completer,
		sampleLength: sampleLength,
		logger:       logger,
	}
}

// Extract asks the completion model for the metadata of rawText.
// Malformed answers are scanned for the title, author, year and journal fields.
// The returned error is only set if the model could not be reached, in which
// case the metadata is empty.
func (e *MetadataExtractor) Extract(ctx context.Context, rawText string) (*model.JournalMetadata, error) {
	if e.completer == nil {
		return nil, helper.NewError("extract metadata", fmt.Errorf("no completer configured"))
	}

	response, err := e.completer(ctx, metadataExtractionPrompt(truncateRunes(rawText, e.sampleLength)), CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return &model.JournalMetadata{}, helper.NewError("extract metadata", err)
	}

	metadata := &model.JournalMetadata{}
	err = textutil.ParseJSONInto(response, metadata)
	if err == nil {
		return metadata, nil
	}

	e.logger.Warn("Metadata response is not valid json, scanning fields", slog.Any("error", err))
	for _, key := range metadataKeys {
		pairs := textutil.ScanKeyValuePairs(response, key)
		if len(pairs) == 0 {
			continue
		}
		value := pairs[0][key]
		switch key {
		case "title":
			metadata.Title = value
		case "author":
			metadata.Author = value
		case "year":
			metadata.Year = value
		case "journal":
			metadata.JournalName = value
		}
	}

	return metadata, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
