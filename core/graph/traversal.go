package graph

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

// GraphDB defines the relation lookups needed to expand a set of herbs.
type GraphDB interface {
	SelectRelationsFromEntities(ctx context.Context, sourceIDs []uuid.UUID) ([]*model.GraphRelation, error)
}

// expansionHops lists the target types followed at each hop.
// Hop one starts at the herbs, every later hop starts at the compounds found before it.
var expansionHops = [][]model.EntityType{
	{model.EntityTypeCompound, model.EntityTypeEffect, model.EntityTypeDisease},
	{model.EntityTypeEffect},
}

// ExpandHerbs walks outgoing relations breadth-first from the herbs.
// All relations of a frontier are fetched and filtered locally by target type,
// so stored types are matched regardless of their case.
// On a failed hop the relations collected so far are returned with the error.
func ExpandHerbs(ctx context.Context, db GraphDB, herbIDs []uuid.UUID, maxHops int) ([]*model.GraphRelation, error) {
	visitedRelations := make(map[uuid.UUID]bool)
	visitedNodes := make(map[uuid.UUID]bool, len(herbIDs))
	for _, id := range herbIDs {
		visitedNodes[id] = true
	}

	var results []*model.GraphRelation
	frontier := herbIDs

	for hop := 0; hop < maxHops && hop < len(expansionHops) && len(frontier) > 0; hop++ {
		relations, err := db.SelectRelationsFromEntities(ctx, frontier)
		if err != nil {
			return results, helper.NewError("select relations from entities", err)
		}

		var next []uuid.UUID
		for _, relation := range relations {
			if visitedRelations[relation.ID] || !hasTargetType(relation, expansionHops[hop]...) {
				continue
			}
			visitedRelations[relation.ID] = true
			results = append(results, relation)

			if hasTargetType(relation, model.EntityTypeCompound) && !visitedNodes[relation.Target.ID] {
				visitedNodes[relation.Target.ID] = true
				next = append(next, relation.Target.ID)
			}
		}
		frontier = next
	}

	return results, nil
}

// SplitByTargetType returns the compound and effect relations, in order.
func SplitByTargetType(relations []*model.GraphRelation) (compounds []*model.GraphRelation, effects []*model.GraphRelation) {
	compounds = []*model.GraphRelation{}
	effects = []*model.GraphRelation{}
	for _, relation := range relations {
		switch {
		case hasTargetType(relation, model.EntityTypeCompound):
			compounds = append(compounds, relation)
		case hasTargetType(relation, model.EntityTypeEffect):
			effects = append(effects, relation)
		}
	}
	return compounds, effects
}

// DeduplicateByID keeps the first entity per id.
func DeduplicateByID(entities []*model.Entity) []*model.Entity {
	seen := make(map[uuid.UUID]bool, len(entities))
	unique := make([]*model.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity == nil || seen[entity.ID] {
			continue
		}
		seen[entity.ID] = true
		unique = append(unique, entity)
	}
	return unique
}

func hasTargetType(relation *model.GraphRelation, types ...model.EntityType) bool {
	targetType := model.EntityType(strings.ToUpper(string(relation.Target.Type)))
	for _, t := range types {
		if targetType == t {
			return true
		}
	}
	return false
}
