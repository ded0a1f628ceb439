package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/herbrag/core/textutil"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

// ChunkFunc splits cleaned text into chunks numbered from 1.
type ChunkFunc func(text string) ([]*model.Chunk, error)

// EmbedFunc generates a normalized embedding for text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// CompleteFunc sends a prompt to a text completion model and returns its answer.
type CompleteFunc func(ctx context.Context, prompt string, options CompletionOptions) (string, error)

// CompletionOptions are the sampling parameters of a single completion.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Pipeline combines cleaning, chunking, embedding and the optional completion model.
type Pipeline struct {
	Chunker   ChunkFunc
	Embedder  EmbedFunc
	Completer CompleteFunc // Optional, enables metadata and graph extraction
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SetCompleter sets the completion model used for extraction.
func (p *Pipeline) SetCompleter(completer CompleteFunc) {
	p.Completer = completer
}

// ProcessingResult contains the cleaned text and its embedded chunks.
type ProcessingResult struct {
	CleanedText string
	Chunks      []*model.Chunk
}

// Process cleans raw journal text, chunks it and embeds every chunk.
// headerPattern and footerPattern may be empty.
func (p *Pipeline) Process(ctx context.Context, rawText string, headerPattern string, footerPattern string) (*ProcessingResult, error) {
	if p.Chunker == nil || p.Embedder == nil {
		return nil, helper.NewError("process text", fmt.Errorf("pipeline needs a chunker and an embedder"))
	}

	cleaned := textutil.CleanAcademicText(rawText, headerPattern, footerPattern)

	chunks, err := p.Chunker(cleaned)
	if err != nil {
		return nil, helper.NewError("chunk text", err)
	}

	for _, chunk := range chunks {
		embedding, err := p.Embedder(ctx, chunk.Content)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("embed chunk %d", chunk.ChunkIndex), err)
		}
		chunk.Embedding = embedding
	}

	return &ProcessingResult{
		CleanedText: cleaned,
		Chunks:      chunks,
	}, nil
}
