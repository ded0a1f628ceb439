package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

// GraphStore persists entities and relations. Both inserts are upserts and
// fill in the stored id.
type GraphStore interface {
	InsertEntity(ctx context.Context, entity *model.Entity) error
	InsertRelation(ctx context.Context, relation *model.StoredRelation) error
}

// PersistResult lists what was written and how many relations were dropped.
type PersistResult struct {
	Entities  []*model.Entity
	Relations []*model.StoredRelation
	Dropped   int
}

// Persist deduplicates the extracted graph of one journal and writes it to store.
// Relations are linked through a normalized name to id map; relations whose
// endpoints were not stored are dropped.
func Persist(ctx context.Context, store GraphStore, entities []model.ExtractedEntity, relations []model.Relation, metadata model.Metadata, logger *slog.Logger) (*PersistResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	result := &PersistResult{}
	ids := make(map[string]uuid.UUID)

	for _, extracted := range DeduplicateEntities(entities) {
		normalized := NormalizeEntityName(extracted.Name)
		entity := &model.Entity{
			Name:           extracted.Name,
			NormalizedName: normalized,
			Type:           model.ParseEntityType(extracted.Type),
			Metadata:       metadata,
		}
		err := store.InsertEntity(ctx, entity)
		if err != nil {
			return result, helper.NewError("insert entity", err)
		}
		result.Entities = append(result.Entities, entity)

		if _, ok := ids[normalized]; !ok {
			ids[normalized] = entity.ID
		}
	}

	known := make(map[string]struct{}, len(ids))
	for name := range ids {
		known[name] = struct{}{}
	}

	storedRelations := make(map[uuid.UUID]bool)
	for _, relation := range DeduplicateRelations(relations) {
		err := ValidateRelation(relation, known)
		if errors.Is(err, helper.ErrInvalidRelation) {
			result.Dropped++
			logger.Debug("Dropped relation", slog.String("relation", relation.Key()), slog.String("reason", err.Error()))
			continue
		}

		stored := &model.StoredRelation{
			SourceEntityID: ids[NormalizeEntityName(relation.Source)],
			TargetEntityID: ids[NormalizeEntityName(relation.Target)],
			Relation:       relation.Relation,
			Metadata:       metadata,
		}
		if relation.ChunkID > 0 {
			chunkID := relation.ChunkID
			stored.ChunkID = &chunkID
		}
		err = store.InsertRelation(ctx, stored)
		if err != nil {
			return result, helper.NewError("insert relation", err)
		}
		if storedRelations[stored.ID] {
			continue
		}
		storedRelations[stored.ID] = true
		result.Relations = append(result.Relations, stored)
	}

	return result, nil
}
