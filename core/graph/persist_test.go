package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGraphStore upserts entities on (normalized name, type) and relations on their triple.
type MockGraphStore struct {
	entities  map[string]*model.Entity
	relations map[string]*model.StoredRelation
	failAfter int
	inserts   int
}

func NewMockGraphStore() *MockGraphStore {
	return &MockGraphStore{
		entities:  make(map[string]*model.Entity),
		relations: make(map[string]*model.StoredRelation),
		failAfter: -1,
	}
}

func (m *MockGraphStore) InsertEntity(ctx context.Context, entity *model.Entity) error {
	if err := m.count(); err != nil {
		return err
	}
	key := entity.NormalizedName + "|" + string(entity.Type)
	if existing, ok := m.entities[key]; ok {
		entity.ID = existing.ID
		return nil
	}
	entity.ID = uuid.New()
	m.entities[key] = entity
	return nil
}

func (m *MockGraphStore) InsertRelation(ctx context.Context, relation *model.StoredRelation) error {
	if err := m.count(); err != nil {
		return err
	}
	key := relation.SourceEntityID.String() + "|" + relation.Relation + "|" + relation.TargetEntityID.String()
	if existing, ok := m.relations[key]; ok {
		if existing.ChunkID == nil {
			existing.ChunkID = relation.ChunkID
		}
		relation.ID = existing.ID
		relation.ChunkID = existing.ChunkID
		return nil
	}
	relation.ID = uuid.New()
	m.relations[key] = relation
	return nil
}

func (m *MockGraphStore) count() error {
	m.inserts++
	if m.failAfter >= 0 && m.inserts > m.failAfter {
		return assert.AnError
	}
	return nil
}

func TestPersist(t *testing.T) {
	ctx := context.Background()

	entities := []model.ExtractedEntity{
		{Name: "Zingiber officinale", Type: "plant"},
		{Name: "Headache", Type: "SYMPTOM"},
		{Name: "zingiber officinale.", Type: "PLANT"},
		{Name: "Gingerol", Type: "compound"},
	}
	relations := []model.Relation{
		{Source: "Zingiber officinale", Relation: "treats", Target: "Headache"},
		{Source: "zingiber officinale", Relation: "treats", Target: "headache"},
		{Source: "Zingiber officinale", Relation: "contains", Target: "Gingerol"},
		{Source: "Zingiber officinale", Relation: "treats", Target: "Insomnia"},
	}

	t.Run("Persist deduplicated graph", func(t *testing.T) {
		store := NewMockGraphStore()

		result, err := Persist(ctx, store, entities, relations, model.Metadata{"journal": "test"}, nil)

		require.NoError(t, err, "Expected Persist to not return an error")
		assert.Len(t, result.Entities, 3, "Expected three unique entities")
		assert.Len(t, result.Relations, 2, "Expected two unique stored relations")
		assert.Equal(t, 1, result.Dropped, "Expected relation to unknown entity to be dropped")
		assert.Equal(t, model.EntityTypePlant, result.Entities[0].Type, "Expected upper-cased type")
		assert.Equal(t, "zingiber officinale", result.Entities[0].NormalizedName, "Expected normalized name")
		assert.Equal(t, result.Entities[0].ID, result.Relations[0].SourceEntityID, "Expected relation source to be linked by name")
		assert.Equal(t, result.Entities[1].ID, result.Relations[0].TargetEntityID, "Expected relation target to be linked by name")
	})

	t.Run("Persisting twice keeps the store unique", func(t *testing.T) {
		store := NewMockGraphStore()

		_, err := Persist(ctx, store, entities, relations, nil, nil)
		require.NoError(t, err, "Expected first Persist to succeed")
		_, err = Persist(ctx, store, entities, relations, nil, nil)
		require.NoError(t, err, "Expected second Persist to succeed")

		assert.Len(t, store.entities, 3, "Expected no duplicate entities")
		assert.Len(t, store.relations, 2, "Expected no duplicate relations")
	})

	t.Run("Relations keep the chunk they were extracted from", func(t *testing.T) {
		store := NewMockGraphStore()
		fromChunks := []model.Relation{
			{Source: "Zingiber officinale", Relation: "treats", Target: "Headache", ChunkID: 7},
			{Source: "Zingiber officinale", Relation: "contains", Target: "Gingerol"},
		}

		result, err := Persist(ctx, store, entities, fromChunks, nil, nil)
		require.NoError(t, err, "Expected Persist to not return an error")
		require.Len(t, result.Relations, 2, "Expected both relations")
		require.NotNil(t, result.Relations[0].ChunkID, "Expected the chunk reference")
		assert.Equal(t, 7, *result.Relations[0].ChunkID, "Expected the source chunk id")
		assert.Nil(t, result.Relations[1].ChunkID, "Expected no chunk reference without a chunk id")
	})

	t.Run("Store failure aborts", func(t *testing.T) {
		store := NewMockGraphStore()
		store.failAfter = 1

		result, err := Persist(ctx, store, entities, relations, nil, nil)

		assert.Error(t, err, "Expected error from failing store")
		assert.Contains(t, err.Error(), "insert entity", "Expected failing step in the error")
		assert.Len(t, result.Entities, 1, "Expected entities written before the failure")
	})
}
