package model

import (
	"time"

	"github.com/google/uuid"
)

// Relation is a (source, relation, target) triple between entity names of one extraction batch.
type Relation struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
	// ChunkID is the database id of the chunk the triple was extracted from, 0 if unknown.
	ChunkID int `json:"-"`
}

// Key is the literal identity of the triple.
func (r Relation) Key() string {
	return r.Source + "|" + r.Relation + "|" + r.Target
}

// StoredRelation is a persisted edge between two entities.
type StoredRelation struct {
	ID             uuid.UUID `json:"id"`
	SourceEntityID uuid.UUID `json:"source_entity_id"`
	TargetEntityID uuid.UUID `json:"target_entity_id"`
	Relation       string    `json:"relation"`
	ChunkID        *int      `json:"chunk_id,omitempty"`
	Metadata       Metadata  `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// EntityRef is the compact form of an entity embedded in a GraphRelation.
type EntityRef struct {
	ID   uuid.UUID  `json:"id"`
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// GraphRelation is a persisted relation joined with both of its endpoints.
type GraphRelation struct {
	ID       uuid.UUID `json:"id"`
	Relation string    `json:"relation"`
	Source   EntityRef `json:"source"`
	Target   EntityRef `json:"target"`
}

// TherapeuticRelations are the relation verbs linking a herb to a condition it helps with.
var TherapeuticRelations = []string{"treats", "reduces", "alleviates", "prevents", "cures"}
