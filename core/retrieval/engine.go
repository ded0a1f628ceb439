package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/core/graph"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

// ChunkSearcher finds chunks by cosine similarity.
type ChunkSearcher interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
}

// JournalLookup resolves the citation info of the journals owning chunks.
type JournalLookup interface {
	SelectJournalsByChunkIDs(ctx context.Context, chunkIDs []int) (map[int]*model.JournalInfo, error)
}

// EntityLookup finds entities by name substring and optional type.
type EntityLookup interface {
	SelectEntitiesBySearch(ctx context.Context, searchTerm string, entityType *model.EntityType, limit int) ([]*model.Entity, error)
}

// RelationLookup fetches the relations around entities.
type RelationLookup interface {
	graph.GraphDB
	SelectRelationsToEntities(ctx context.Context, entityIDs []uuid.UUID, relationTypes []string) ([]*model.GraphRelation, error)
}

// Engine runs the vector and graph lookups of a hybrid search.
type Engine struct {
	chunks    ChunkSearcher
	journals  JournalLookup
	entities  EntityLookup
	relations RelationLookup
}

// NewEngine creates a new retrieval engine
func NewEngine(chunks ChunkSearcher, journals JournalLookup, entities EntityLookup, relations RelationLookup) *Engine {
	return &Engine{
		chunks:    chunks,
		journals:  journals,
		entities:  entities,
		relations: relations,
	}
}

// VectorRetrieve returns the topK chunks most similar to embedding with the
// title, author and year of their journals.
func (e *Engine) VectorRetrieve(ctx context.Context, embedding []float32, topK int) ([]*model.VectorSearchResult, error) {
	chunks, err := e.chunks.SelectChunksBySimilarity(ctx, embedding, topK, 0)
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}

	results := make([]*model.VectorSearchResult, len(chunks))
	chunkIDs := make([]int, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
		results[i] = &model.VectorSearchResult{
			ID:         chunk.ID,
			Text:       chunk.Content,
			Similarity: chunk.Similarity,
			JournalID:  chunk.JournalID,
		}
	}
	if len(results) == 0 {
		return results, nil
	}

	infos, err := e.journals.SelectJournalsByChunkIDs(ctx, chunkIDs)
	if err != nil {
		return results, helper.NewError("select journals by chunk ids", err)
	}
	for _, result := range results {
		result.Journal = infos[result.ID]
	}

	return results, nil
}

// EntityMatches are the graph hits of one query entity.
type EntityMatches struct {
	Entities []*model.Entity
	Herbs    []*model.Entity
}

// MatchEntity looks up a query entity in the graph by name and type.
// Symptoms and diseases also yield the plants related to them by a therapeutic
// verb, plants yield the matching plants themselves.
func (e *Engine) MatchEntity(ctx context.Context, entity model.ExtractedEntity, limit int) (*EntityMatches, error) {
	name := strings.TrimSpace(entity.Name)
	if name == "" {
		return nil, helper.NewError("match entity", fmt.Errorf("entity name is empty"))
	}
	entityType := model.ParseEntityType(entity.Type)

	var typeFilter *model.EntityType
	if entityType.IsKnown() {
		typeFilter = &entityType
	}
	found, err := e.entities.SelectEntitiesBySearch(ctx, name, typeFilter, limit)
	if err != nil {
		return nil, helper.NewError("select entities by search", err)
	}

	matches := &EntityMatches{
		Entities: found,
		Herbs:    []*model.Entity{},
	}

	switch {
	case entityType.IsCondition():
		// Condition entities of either type qualify.
		candidates, err := e.entities.SelectEntitiesBySearch(ctx, name, nil, limit)
		if err != nil {
			return matches, helper.NewError("select conditions by search", err)
		}
		conditions := []*model.Entity{}
		for _, candidate := range candidates {
			if model.ParseEntityType(string(candidate.Type)).IsCondition() {
				conditions = append(conditions, candidate)
			}
		}

		herbs, err := e.herbsTreating(ctx, conditions)
		if err != nil {
			return matches, err
		}
		matches.Herbs = herbs
	case entityType == model.EntityTypePlant:
		for _, candidate := range found {
			if model.ParseEntityType(string(candidate.Type)) == model.EntityTypePlant {
				matches.Herbs = append(matches.Herbs, candidate)
			}
		}
	}

	return matches, nil
}

// ExpandHerbs collects the relations of the herbs to compounds, effects and
// diseases and the effects reached through their compounds.
func (e *Engine) ExpandHerbs(ctx context.Context, herbIDs []uuid.UUID, maxHops int) ([]*model.GraphRelation, error) {
	return graph.ExpandHerbs(ctx, e.relations, herbIDs, maxHops)
}

func (e *Engine) herbsTreating(ctx context.Context, conditions []*model.Entity) ([]*model.Entity, error) {
	if len(conditions) == 0 {
		return []*model.Entity{}, nil
	}

	ids := make([]uuid.UUID, len(conditions))
	for i, condition := range conditions {
		ids[i] = condition.ID
	}

	relations, err := e.relations.SelectRelationsToEntities(ctx, ids, model.TherapeuticRelations)
	if err != nil {
		return nil, helper.NewError("select relations to entities", err)
	}

	herbs := []*model.Entity{}
	for _, relation := range relations {
		if model.ParseEntityType(string(relation.Source.Type)) != model.EntityTypePlant {
			continue
		}
		herbs = append(herbs, &model.Entity{
			ID:   relation.Source.ID,
			Name: relation.Source.Name,
			Type: model.EntityTypePlant,
		})
	}

	return graph.DeduplicateByID(herbs), nil
}
