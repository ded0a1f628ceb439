package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/herbrag/core/graph"
	"github.com/siherrmann/herbrag/core/pipeline"
	"github.com/siherrmann/herbrag/core/textutil"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	"golang.org/x/sync/errgroup"
)

// HybridSearcher answers questions from the vector index and the knowledge graph.
type HybridSearcher struct {
	engine    *Engine
	embedder  pipeline.EmbedFunc
	completer pipeline.CompleteFunc
	config    model.Config
	logger    *slog.Logger
}

// NewHybridSearcher creates a HybridSearcher.
func NewHybridSearcher(engine *Engine, embedder pipeline.EmbedFunc, completer pipeline.CompleteFunc, config model.Config, logger *slog.Logger) *HybridSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridSearcher{
		engine:    engine,
		embedder:  embedder,
		completer: completer,
		config:    config,
		logger:    logger,
	}
}

// Search runs a hybrid search for query. Failing collaborators degrade the
// result instead of failing it: a query without entities is answered from the
// vector hits only and a failed answer generation returns FailedAnswer.
// Only an empty query is an error.
func (s *HybridSearcher) Search(ctx context.Context, query string, topK int) (*model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, helper.NewError("hybrid search", fmt.Errorf("query is empty"))
	}
	if topK <= 0 {
		topK = s.config.TopK
	}

	result := &model.SearchResult{
		Query:         query,
		QueryEntities: s.ExtractQueryEntities(ctx, query),
		VectorResults: s.vectorSearch(ctx, query, topK),
		GraphResults: &model.GraphResults{
			Entities:  []*model.Entity{},
			Herbs:     []*model.Entity{},
			Relations: []*model.GraphRelation{},
			Compounds: []*model.GraphRelation{},
			Effects:   []*model.GraphRelation{},
		},
	}

	s.lookupGraph(ctx, result.QueryEntities, result.GraphResults)
	s.expandGraph(ctx, result.GraphResults)
	result.Answer = s.generateAnswer(ctx, query, result.VectorResults, result.GraphResults)
	result.Summary = model.SearchSummary{
		TotalChunks:    len(result.VectorResults),
		TotalEntities:  len(result.GraphResults.Entities),
		TotalHerbs:     len(result.GraphResults.Herbs),
		TotalCompounds: len(result.GraphResults.Compounds),
		TotalEffects:   len(result.GraphResults.Effects),
		TotalRelations: len(result.GraphResults.Relations),
	}

	s.logger.Info("Hybrid search finished",
		slog.String("query", query),
		slog.Int("entities", len(result.QueryEntities)),
		slog.Int("chunks", result.Summary.TotalChunks),
		slog.Int("herbs", result.Summary.TotalHerbs),
	)

	return result, nil
}

// ExtractQueryEntities asks the completion model for the entities of query.
// Any failure yields an empty list.
func (s *HybridSearcher) ExtractQueryEntities(ctx context.Context, query string) []model.ExtractedEntity {
	entities := []model.ExtractedEntity{}
	if s.completer == nil {
		return entities
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	response, err := s.completer(callCtx, queryEntityPrompt(query), pipeline.CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   300,
	})
	if err != nil {
		s.logger.Warn("Query entity extraction failed", slog.Any("error", err))
		return entities
	}

	parsed, err := textutil.ParseJSONResponse(response)
	if err != nil {
		s.logger.Warn("Query entity response is not valid json", slog.Any("error", err))
		return entities
	}

	items, ok := parsed.([]interface{})
	if object, isObject := parsed.(map[string]interface{}); isObject {
		items, ok = object["entities"].([]interface{})
	}
	if !ok {
		return entities
	}

	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := fields["name"].(string)
		entityType, _ := fields["type"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		entities = append(entities, model.ExtractedEntity{
			Name: strings.TrimSpace(name),
			Type: string(model.ParseEntityType(entityType)),
		})
	}

	return graph.DeduplicateEntities(entities)
}

func (s *HybridSearcher) vectorSearch(ctx context.Context, query string, topK int) []*model.VectorSearchResult {
	if s.embedder == nil {
		return []*model.VectorSearchResult{}
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	embedding, err := s.embedder(callCtx, query)
	if err != nil {
		s.logger.Error("Query embedding failed", slog.Any("error", err))
		return []*model.VectorSearchResult{}
	}

	results, err := s.engine.VectorRetrieve(callCtx, embedding, topK)
	if err != nil {
		s.logger.Error("Vector search failed", slog.Any("error", err))
		if results == nil {
			return []*model.VectorSearchResult{}
		}
	}
	return results
}

// lookupGraph matches every query entity concurrently and merges the matches
// in query order. Entities and herbs are deduplicated by id.
func (s *HybridSearcher) lookupGraph(ctx context.Context, queryEntities []model.ExtractedEntity, results *model.GraphResults) {
	matches := make([]*EntityMatches, len(queryEntities))

	g, gctx := errgroup.WithContext(ctx)
	for i, entity := range queryEntities {
		g.Go(func() error {
			callCtx, cancel := s.callContext(gctx)
			defer cancel()

			match, err := s.engine.MatchEntity(callCtx, entity, s.config.EntitySearchLimit)
			if err != nil {
				s.logger.Warn("Graph lookup failed", slog.String("entity", entity.Name), slog.Any("error", err))
			}
			matches[i] = match
			return nil
		})
	}
	_ = g.Wait()

	var entities, herbs []*model.Entity
	for _, match := range matches {
		if match == nil {
			continue
		}
		entities = append(entities, match.Entities...)
		herbs = append(herbs, match.Herbs...)
	}
	results.Entities = graph.DeduplicateByID(entities)
	results.Herbs = graph.DeduplicateByID(herbs)
}

func (s *HybridSearcher) expandGraph(ctx context.Context, results *model.GraphResults) {
	if len(results.Herbs) == 0 {
		return
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	relations, err := s.engine.ExpandHerbs(callCtx, results.HerbIDs(), s.config.MaxHops)
	if err != nil {
		s.logger.Warn("Graph expansion incomplete", slog.Any("error", err))
	}
	if relations != nil {
		results.Relations = relations
	}
	results.Compounds, results.Effects = graph.SplitByTargetType(results.Relations)
}

func (s *HybridSearcher) generateAnswer(ctx context.Context, query string, chunks []*model.VectorSearchResult, results *model.GraphResults) string {
	if len(chunks) == 0 && len(results.Herbs) == 0 {
		return NoResultsAnswer
	}
	if s.completer == nil {
		return FailedAnswer
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	prompt := answerPrompt(answerContext{
		query:        query,
		chunks:       chunks,
		herbs:        results.Herbs,
		relations:    results.Relations,
		chunkLength:  s.config.ChunkContextLength,
		maxRelations: s.config.MaxPromptRelations,
	})
	answer, err := s.completer(callCtx, prompt, pipeline.CompletionOptions{
		Temperature: s.config.AnswerTemperature,
		MaxTokens:   s.config.AnswerMaxTokens,
	})
	if err != nil {
		s.logger.Error("Answer generation failed", slog.Any("error", err))
		return FailedAnswer
	}

	return strings.TrimSpace(answer) + formatSources(citations(chunks, s.config.MaxCitations))
}

func (s *HybridSearcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.CallTimeout)
}
