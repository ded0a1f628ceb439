package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/herbrag/core/graph"
	"github.com/siherrmann/herbrag/core/textutil"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	"golang.org/x/sync/errgroup"
)

// GraphExtractor extracts entities and relations from chunks with a completion model.
type GraphExtractor struct {
	completer   CompleteFunc
	batchSize   int
	maxEntities int
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewGraphExtractor creates a GraphExtractor from the batch size, entity cap and call timeout of config.
func NewGraphExtractor(completer CompleteFunc, config model.Config, logger *slog.Logger) *GraphExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphExtractor{
		completer:   completer,
		batchSize:   max(config.BatchSize, 1),
		maxEntities: max(config.MaxEntitiesPerChunk, 1),
		callTimeout: config.CallTimeout,
		logger:      logger,
	}
}

// ExtractInBatches runs the extraction over chunks in sequential batches.
// Chunks of one batch are extracted concurrently. Chunks that fail or yield
// nothing are left out of the results but still counted in Total.
func (e *GraphExtractor) ExtractInBatches(ctx context.Context, chunks []*model.Chunk) (*model.ExtractionReport, error) {
	if e.completer == nil {
		return nil, helper.NewError("extract graph", fmt.Errorf("no completer configured"))
	}

	report := &model.ExtractionReport{
		Results: []*model.GraphExtractionResult{},
		Total:   len(chunks),
	}

	for start := 0; start < len(chunks); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return report, helper.NewError("extract graph", err)
		}

		batch := chunks[start:min(start+e.batchSize, len(chunks))]
		results := make([]*model.GraphExtractionResult, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.batchSize)
		for i, chunk := range batch {
			g.Go(func() error {
				results[i] = e.ExtractChunk(gctx, chunk)
				return nil
			})
		}
		_ = g.Wait()

		for _, result := range results {
			if result != nil {
				report.Results = append(report.Results, result)
			}
		}
		report.Processed = len(report.Results)

		e.logger.Info("Extracted graph batch",
			slog.Int("from", start+1),
			slog.Int("to", start+len(batch)),
			slog.Int("processed", report.Processed),
			slog.Int("total", report.Total),
		)
	}

	return report, nil
}

// ExtractChunk extracts the graph of a single chunk.
// It returns nil if the model failed or nothing survived filtering.
func (e *GraphExtractor) ExtractChunk(ctx context.Context, chunk *model.Chunk) *model.GraphExtractionResult {
	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	response, err := e.completer(callCtx, graphExtractionPrompt(chunk.Content, e.maxEntities), CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		e.logger.Error("Graph extraction failed", slog.Int("chunk", chunk.ChunkIndex), slog.Any("error", err))
		return nil
	}

	entities, relations := parseGraphResponse(response)
	if entities == nil && relations == nil {
		e.logger.Warn("No graph found in response", slog.Int("chunk", chunk.ChunkIndex))
		return nil
	}

	entities = graph.FilterEntities(entities)
	if len(entities) > e.maxEntities {
		entities = entities[:e.maxEntities]
	}
	relations = graph.FilterRelationsByEntities(relations, entities)

	return &model.GraphExtractionResult{
		ChunkID:   chunk.ID,
		Entities:  entities,
		Relations: relations,
	}
}

type graphResponse struct {
	Entities  []model.ExtractedEntity `json:"entities"`
	Relations []model.Relation        `json:"relations"`
}

// parseGraphResponse decodes the model answer, scanning for name/type and
// source/relation/target pairs if it is not valid JSON. Both slices are nil
// if the scan finds nothing either.
func parseGraphResponse(response string) ([]model.ExtractedEntity, []model.Relation) {
	parsed := graphResponse{}
	if err := textutil.ParseJSONInto(response, &parsed); err == nil {
		if parsed.Entities == nil {
			parsed.Entities = []model.ExtractedEntity{}
		}
		if parsed.Relations == nil {
			parsed.Relations = []model.Relation{}
		}
		return parsed.Entities, parsed.Relations
	}

	var entities []model.ExtractedEntity
	for _, pair := range textutil.ScanKeyValuePairs(response, "name", "type") {
		entities = append(entities, model.ExtractedEntity{Name: pair["name"], Type: pair["type"]})
	}
	var relations []model.Relation
	for _, pair := range textutil.ScanKeyValuePairs(response, "source", "relation", "target") {
		relations = append(relations, model.Relation{Source: pair["source"], Relation: pair["relation"], Target: pair["target"]})
	}

	if len(entities) == 0 && len(relations) == 0 {
		return nil, nil
	}
	return entities, relations
}
