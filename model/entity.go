package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType is the upper-cased category of an extracted entity.
// Known types are listed below, any other upper-cased value is accepted as free-form.
type EntityType string

const (
	EntityTypePlant     EntityType = "PLANT"
	EntityTypeCompound  EntityType = "COMPOUND"
	EntityTypeDisease   EntityType = "DISEASE"
	EntityTypeSymptom   EntityType = "SYMPTOM"
	EntityTypeEffect    EntityType = "EFFECT"
	EntityTypeMechanism EntityType = "MECHANISM"
	EntityTypeDosage    EntityType = "DOSAGE"
	EntityTypeMethod    EntityType = "METHOD"
)

var knownEntityTypes = map[EntityType]struct{}{
	EntityTypePlant:     {},
	EntityTypeCompound:  {},
	EntityTypeDisease:   {},
	EntityTypeSymptom:   {},
	EntityTypeEffect:    {},
	EntityTypeMechanism: {},
	EntityTypeDosage:    {},
	EntityTypeMethod:    {},
}

// ParseEntityType trims and upper-cases a raw type string coming from a model response or the database.
func ParseEntityType(raw string) EntityType {
	return EntityType(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsKnown reports whether t is one of the predefined entity types.
func (t EntityType) IsKnown() bool {
	_, ok := knownEntityTypes[t]
	return ok
}

// IsCondition reports whether entities of this type can be treated by a herb.
func (t EntityType) IsCondition() bool {
	return t == EntityTypeSymptom || t == EntityTypeDisease
}

// ExtractedEntity is an entity as returned by the extraction model, before it is persisted.
type ExtractedEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Entity is a persisted node of the knowledge graph.
type Entity struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	Type           EntityType `json:"entity_type"`
	Metadata       Metadata   `json:"metadata,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
