package model

import "github.com/google/uuid"

// GraphExtractionResult holds the filtered entities and relations of one chunk.
type GraphExtractionResult struct {
	ChunkID   int               `json:"chunk_id"`
	Entities  []ExtractedEntity `json:"entities"`
	Relations []Relation        `json:"relations"`
}

// ExtractionReport aggregates a batched extraction run.
// Processed is lower than Total when chunks failed or yielded nothing.
type ExtractionReport struct {
	Results   []*GraphExtractionResult `json:"results"`
	Processed int                      `json:"processed"`
	Total     int                      `json:"total"`
}

// Entities returns the entities of all results in chunk order.
func (r *ExtractionReport) Entities() []ExtractedEntity {
	var entities []ExtractedEntity
	for _, result := range r.Results {
		entities = append(entities, result.Entities...)
	}
	return entities
}

// Relations returns the relations of all results in chunk order, each
// carrying the id of the chunk it was extracted from.
func (r *ExtractionReport) Relations() []Relation {
	var relations []Relation
	for _, result := range r.Results {
		for _, relation := range result.Relations {
			relation.ChunkID = result.ChunkID
			relations = append(relations, relation)
		}
	}
	return relations
}

// JournalInfo is the citation information attached to a vector hit.
type JournalInfo struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Year   string `json:"year,omitempty"`
}

// VectorSearchResult is a chunk retrieved by cosine similarity.
type VectorSearchResult struct {
	ID         int          `json:"id"`
	Text       string       `json:"text"`
	Similarity float64      `json:"similarity"`
	JournalID  int64        `json:"journal_id"`
	Journal    *JournalInfo `json:"journal,omitempty"`
}

// GraphResults is the graph half of a hybrid search.
type GraphResults struct {
	Entities  []*Entity        `json:"entities"`
	Herbs     []*Entity        `json:"herbs"`
	Relations []*GraphRelation `json:"relations"`
	Compounds []*GraphRelation `json:"compounds"`
	Effects   []*GraphRelation `json:"effects"`
}

// HerbIDs returns the ids of the found herbs in order.
func (g *GraphResults) HerbIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Herbs))
	for _, herb := range g.Herbs {
		ids = append(ids, herb.ID)
	}
	return ids
}

// SearchSummary counts what a hybrid search returned.
type SearchSummary struct {
	TotalChunks    int `json:"total_chunks"`
	TotalEntities  int `json:"total_entities"`
	TotalHerbs     int `json:"total_herbs"`
	TotalCompounds int `json:"total_compounds"`
	TotalEffects   int `json:"total_effects"`
	TotalRelations int `json:"total_relations"`
}

// SearchResult is the full payload of a hybrid search.
type SearchResult struct {
	Query         string                `json:"query"`
	QueryEntities []ExtractedEntity     `json:"query_entities"`
	VectorResults []*VectorSearchResult `json:"vector_results"`
	GraphResults  *GraphResults         `json:"graph_results"`
	Answer        string                `json:"answer"`
	Summary       SearchSummary         `json:"summary"`
}

// IngestReport describes the outcome of ingesting one journal.
type IngestReport struct {
	JournalRID uuid.UUID `json:"journal_rid"`
	Chunks     int       `json:"chunks"`
	Entities   int       `json:"entities"`
	Relations  int       `json:"relations"`
	Processed  int       `json:"processed"`
	Total      int       `json:"total"`
}
