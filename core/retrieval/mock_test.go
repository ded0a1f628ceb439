package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/core/pipeline"
	"github.com/siherrmann/herbrag/model"
)

// MockStore serves chunks, journals, entities and relations from memory.
type MockStore struct {
	chunks    []*model.Chunk
	journals  map[int]*model.JournalInfo
	entities  []*model.Entity
	relations []*model.GraphRelation

	chunkErr    error
	entityErr   error
	relationErr error
}

func (m *MockStore) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	if m.chunkErr != nil {
		return nil, m.chunkErr
	}
	if limit > len(m.chunks) {
		limit = len(m.chunks)
	}
	return m.chunks[:limit], nil
}

func (m *MockStore) SelectJournalsByChunkIDs(ctx context.Context, chunkIDs []int) (map[int]*model.JournalInfo, error) {
	infos := make(map[int]*model.JournalInfo)
	for _, id := range chunkIDs {
		if info, ok := m.journals[id]; ok {
			infos[id] = info
		}
	}
	return infos, nil
}

func (m *MockStore) SelectEntitiesBySearch(ctx context.Context, searchTerm string, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	if m.entityErr != nil {
		return nil, m.entityErr
	}
	found := []*model.Entity{}
	for _, entity := range m.entities {
		if !strings.Contains(strings.ToLower(entity.Name), strings.ToLower(searchTerm)) {
			continue
		}
		if entityType != nil && model.ParseEntityType(string(entity.Type)) != *entityType {
			continue
		}
		if len(found) < limit {
			found = append(found, entity)
		}
	}
	return found, nil
}

func (m *MockStore) SelectRelationsFromEntities(ctx context.Context, entityIDs []uuid.UUID) ([]*model.GraphRelation, error) {
	if m.relationErr != nil {
		return nil, m.relationErr
	}
	ids := idSet(entityIDs)
	found := []*model.GraphRelation{}
	for _, relation := range m.relations {
		if ids[relation.Source.ID] {
			found = append(found, relation)
		}
	}
	return found, nil
}

func (m *MockStore) SelectRelationsToEntities(ctx context.Context, entityIDs []uuid.UUID, relationTypes []string) ([]*model.GraphRelation, error) {
	if m.relationErr != nil {
		return nil, m.relationErr
	}
	ids := idSet(entityIDs)
	found := []*model.GraphRelation{}
	for _, relation := range m.relations {
		if !ids[relation.Target.ID] {
			continue
		}
		if len(relationTypes) > 0 && !containsString(relationTypes, strings.ToLower(relation.Relation)) {
			continue
		}
		found = append(found, relation)
	}
	return found, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// MockCompleter answers the query entity prompt and the answer prompt.
type MockCompleter struct {
	mu             sync.Mutex
	entityResponse string
	answer         string
	entityErr      error
	answerErr      error
	answerPrompts  []string
	answerOptions  pipeline.CompletionOptions
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string, options pipeline.CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.Contains(prompt, "Identify the medical and botanical entities") {
		return m.entityResponse, m.entityErr
	}
	m.answerPrompts = append(m.answerPrompts, prompt)
	m.answerOptions = options
	return m.answer, m.answerErr
}

func mockEmbedder(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func failingEmbedder(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding service down")
}

func entity(name string, entityType model.EntityType) *model.Entity {
	return &model.Entity{ID: uuid.New(), Name: name, NormalizedName: strings.ToLower(name), Type: entityType}
}

func relate(source *model.Entity, verb string, target *model.Entity) *model.GraphRelation {
	return &model.GraphRelation{
		ID:       uuid.New(),
		Relation: verb,
		Source:   model.EntityRef{ID: source.ID, Name: source.Name, Type: source.Type},
		Target:   model.EntityRef{ID: target.ID, Name: target.Name, Type: target.Type},
	}
}

// herbalFixture is a small graph around ginger, willow and headache.
type herbalFixture struct {
	store *MockStore

	ginger    *model.Entity
	willow    *model.Entity
	gingerol  *model.Entity
	headache  *model.Entity
	analgesic *model.Entity
	migraine  *model.Entity
	nausea    *model.Entity

	containsGingerol *model.GraphRelation
	treatsMigraine   *model.GraphRelation
	hasAnalgesic     *model.GraphRelation
}

func newHerbalFixture() *herbalFixture {
	f := &herbalFixture{
		ginger:    entity("Zingiber officinale", model.EntityTypePlant),
		willow:    entity("Salix alba", model.EntityTypePlant),
		gingerol:  entity("gingerol", model.EntityTypeCompound),
		headache:  entity("headache", model.EntityTypeSymptom),
		analgesic: entity("analgesic", model.EntityTypeEffect),
		migraine:  entity("migraine headache", model.EntityTypeDisease),
		nausea:    entity("nausea", model.EntityTypeSymptom),
	}
	f.containsGingerol = relate(f.ginger, "contains", f.gingerol)
	f.treatsMigraine = relate(f.willow, "treats", f.migraine)
	f.hasAnalgesic = relate(f.gingerol, "has_effect", f.analgesic)

	f.store = &MockStore{
		chunks: []*model.Chunk{
			{ID: 1, JournalID: 10, Content: "Zingiber officinale reduced headache intensity within two hours.", Similarity: 0.91},
			{ID: 2, JournalID: 10, Content: "Gingerol acts as an analgesic compound.", Similarity: 0.84},
			{ID: 3, JournalID: 11, Content: "Salix alba bark contains salicin.", Similarity: 0.72},
		},
		journals: map[int]*model.JournalInfo{
			1: {Title: "Ginger for migraine", Author: "A. Putri", Year: "2021"},
			2: {Title: "Ginger for migraine", Author: "A. Putri", Year: "2021"},
			3: {Title: "Willow bark review", Year: "2019"},
		},
		entities: []*model.Entity{f.ginger, f.willow, f.gingerol, f.headache, f.analgesic, f.migraine, f.nausea},
		relations: []*model.GraphRelation{
			relate(f.ginger, "Treats", f.headache),
			f.containsGingerol,
			relate(f.ginger, "reduces", f.nausea),
			relate(f.willow, "alleviates", f.headache),
			relate(f.willow, "mentioned_with", f.nausea),
			f.treatsMigraine,
			f.hasAnalgesic,
		},
	}
	return f
}
