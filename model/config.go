package model

import (
	"fmt"
	"time"
)

// Config holds the tuning parameters of ingestion and hybrid search.
type Config struct {
	// Chunking
	SentencesPerChunk int `json:"sentences_per_chunk"`
	OverlapSentences  int `json:"overlap_sentences"`

	// Graph extraction
	BatchSize            int `json:"batch_size"`
	MaxEntitiesPerChunk  int `json:"max_entities_per_chunk"`
	MetadataSampleLength int `json:"metadata_sample_length"`

	// Search
	TopK              int `json:"top_k"`
	EntitySearchLimit int `json:"entity_search_limit"`
	MaxHops           int `json:"max_hops"`

	// Answer generation
	ChunkContextLength int     `json:"chunk_context_length"`
	MaxPromptRelations int     `json:"max_prompt_relations"`
	MaxCitations       int     `json:"max_citations"`
	AnswerTemperature  float64 `json:"answer_temperature"`
	AnswerMaxTokens    int     `json:"answer_max_tokens"`

	// CallTimeout bounds every call to the LLM, the embedder and the database.
	CallTimeout time.Duration `json:"call_timeout"`
}

// DefaultConfig returns the configuration the pipeline was tuned with.
func DefaultConfig() Config {
	return Config{
		SentencesPerChunk:    12,
		OverlapSentences:     3,
		BatchSize:            5,
		MaxEntitiesPerChunk:  15,
		MetadataSampleLength: 4000,
		TopK:                 5,
		EntitySearchLimit:    10,
		MaxHops:              2,
		ChunkContextLength:   500,
		MaxPromptRelations:   15,
		MaxCitations:         3,
		AnswerTemperature:    0.3,
		AnswerMaxTokens:      1000,
		CallTimeout:          60 * time.Second,
	}
}

// Validate checks the parameters that would make chunking or batching loop forever.
func (c Config) Validate() error {
	if c.SentencesPerChunk <= 0 {
		return fmt.Errorf("sentences per chunk must be positive, got %d", c.SentencesPerChunk)
	}
	if c.OverlapSentences < 0 || c.OverlapSentences >= c.SentencesPerChunk {
		return fmt.Errorf("overlap sentences must be in [0, %d), got %d", c.SentencesPerChunk, c.OverlapSentences)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top k must be positive, got %d", c.TopK)
	}
	return nil
}
