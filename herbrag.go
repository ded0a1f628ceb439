package herbrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/core/graph"
	"github.com/siherrmann/herbrag/core/pipeline"
	"github.com/siherrmann/herbrag/core/retrieval"
	"github.com/siherrmann/herbrag/database"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	loadSql "github.com/siherrmann/herbrag/sql"
)

// HerbRAG provides a unified interface to ingestion and hybrid search over herbal medicine journals
type HerbRAG struct {
	DB        *helper.Database
	Journals  *database.JournalsDBHandler
	Chunks    *database.ChunksDBHandler
	Entities  *database.EntitiesDBHandler
	Relations *database.RelationsDBHandler
	Pipeline  *pipeline.Pipeline // Optional until ingestion or search
	Engine    *retrieval.Engine
	Config    model.Config
	// Logging
	log *slog.Logger
}

// graphStore writes extracted graphs through the entities and relations handlers.
type graphStore struct {
	*database.EntitiesDBHandler
	*database.RelationsDBHandler
}

// NewHerbRAG creates a new HerbRAG instance with all handlers initialized
func NewHerbRAG(dbConfig *helper.DatabaseConfiguration, embeddingDim int, config model.Config) (*HerbRAG, error) {
	err := config.Validate()
	if err != nil {
		return nil, helper.NewError("validate config", err)
	}

	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db, err := helper.NewDatabase("herbrag", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}
	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Journals before chunks, entities before relations
	journals, err := database.NewJournalsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create journals handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	entities, err := database.NewEntitiesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create entities handler", err)
	}

	relations, err := database.NewRelationsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relations handler", err)
	}

	return &HerbRAG{
		DB:        db,
		Journals:  journals,
		Chunks:    chunks,
		Entities:  entities,
		Relations: relations,
		Engine:    retrieval.NewEngine(chunks, journals, entities, relations),
		Config:    config,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (h *HerbRAG) Close() error {
	if h.DB != nil && h.DB.Instance != nil {
		return h.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the processing pipeline
func (h *HerbRAG) SetPipeline(p *pipeline.Pipeline) {
	h.Pipeline = p
}

// UseDefaultPipeline sets up sentence window chunking with the configured
// window, the all-MiniLM-L6-v2 embedder (384 dimensions) and, if llmConfig
// is not nil, the configured completion model.
func (h *HerbRAG) UseDefaultPipeline(llmConfig *helper.LLMConfiguration) error {
	chunker := pipeline.SentenceWindowChunker(h.Config.SentencesPerChunk, h.Config.OverlapSentences)
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	p := pipeline.NewPipeline(chunker, embedder)
	if llmConfig != nil {
		completer, err := pipeline.DefaultCompleter(llmConfig)
		if err != nil {
			return helper.NewError("create default completer", err)
		}
		p.SetCompleter(completer)
	}

	h.Pipeline = p
	return nil
}

// IngestPDF extracts the text of a PDF file and ingests it as a journal.
func (h *HerbRAG) IngestPDF(ctx context.Context, path string) (*model.IngestReport, error) {
	text, err := pipeline.ExtractPDFText(path)
	if err != nil {
		return nil, helper.NewError("extract pdf text", err)
	}

	journal := model.NewJournal(path, text, model.Metadata{"format": "pdf"})
	return h.IngestJournal(ctx, journal)
}

// IngestTextFile ingests an already extracted plain text file as a journal.
func (h *HerbRAG) IngestTextFile(ctx context.Context, path string) (*model.IngestReport, error) {
	journal, err := model.NewJournalFromFile(path, model.Metadata{"format": "text"})
	if err != nil {
		return nil, helper.NewError("read text file", err)
	}
	return h.IngestJournal(ctx, journal)
}

// IngestJournal processes a journal by:
// 1. Detecting its metadata and page decorations with the completion model
// 2. Inserting the journal (without content)
// 3. Cleaning, chunking and embedding the content and inserting the chunks
// 4. Extracting the knowledge graph of the chunks in batches and persisting it
// Without a completer the metadata and graph steps are skipped.
func (h *HerbRAG) IngestJournal(ctx context.Context, journal *model.Journal) (*model.IngestReport, error) {
	if h.Pipeline == nil {
		return nil, helper.NewError("ingest journal", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if journal == nil || journal.Content == "" {
		return nil, helper.NewError("ingest journal", fmt.Errorf("journal content is empty"))
	}

	metadata := h.detectMetadata(ctx, journal.Content)
	metadata.Apply(journal)

	// Content is processed but not stored
	content := journal.Content
	journal.Content = ""

	err := h.Journals.InsertJournal(ctx, journal)
	if err != nil {
		return nil, helper.NewError("insert journal", err)
	}
	h.log.Info("Inserted journal", slog.String("journal_rid", journal.RID.String()), slog.String("title", journal.Title))

	processed, err := h.Pipeline.Process(ctx, content, metadata.HeaderPattern, metadata.FooterPattern)
	if err != nil {
		return nil, helper.NewError("process journal", err)
	}

	for _, chunk := range processed.Chunks {
		chunk.JournalRID = journal.RID
		err := h.Chunks.InsertChunk(ctx, chunk)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert chunk %d", chunk.ChunkIndex), err)
		}
	}
	h.log.Info("Inserted chunks", slog.Int("chunks", len(processed.Chunks)), slog.String("journal_rid", journal.RID.String()))

	report := &model.IngestReport{
		JournalRID: journal.RID,
		Chunks:     len(processed.Chunks),
		Total:      len(processed.Chunks),
	}
	if h.Pipeline.Completer == nil {
		h.log.Warn("No completer set, skipping graph extraction", slog.String("journal_rid", journal.RID.String()))
		return report, nil
	}

	extraction, err := pipeline.NewGraphExtractor(h.Pipeline.Completer, h.Config, h.log).ExtractInBatches(ctx, processed.Chunks)
	if err != nil {
		return report, helper.NewError("extract graph", err)
	}
	report.Processed = extraction.Processed

	persisted, err := graph.Persist(
		ctx,
		graphStore{h.Entities, h.Relations},
		graph.DeduplicateEntities(extraction.Entities()),
		graph.DeduplicateRelations(extraction.Relations()),
		model.Metadata{"journal_rid": journal.RID.String()},
		h.log,
	)
	if err != nil {
		return report, helper.NewError("persist graph", err)
	}
	report.Entities = len(persisted.Entities)
	report.Relations = len(persisted.Relations)

	h.log.Info("Ingested journal",
		slog.String("journal_rid", journal.RID.String()),
		slog.Int("chunks", report.Chunks),
		slog.Int("entities", report.Entities),
		slog.Int("relations", report.Relations),
		slog.Int("dropped_relations", persisted.Dropped),
	)

	return report, nil
}

// HybridSearch answers query from the most similar chunks and the herbs,
// compounds and effects found in the knowledge graph.
// A topK of zero or less uses the configured default.
func (h *HerbRAG) HybridSearch(ctx context.Context, query string, topK int) (*model.SearchResult, error) {
	if h.Pipeline == nil || h.Pipeline.Embedder == nil {
		return nil, helper.NewError("hybrid search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	searcher := retrieval.NewHybridSearcher(h.Engine, h.Pipeline.Embedder, h.Pipeline.Completer, h.Config, h.log)
	return searcher.Search(ctx, query, topK)
}

// DeleteJournal deletes a journal together with its chunks.
// Entities and relations stay, relations lose their chunk reference.
func (h *HerbRAG) DeleteJournal(ctx context.Context, rid uuid.UUID) error {
	return h.Journals.DeleteJournal(ctx, rid)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (h *HerbRAG) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return h.Chunks.ChangeIndexType(ctx, indexType, params)
}

func (h *HerbRAG) detectMetadata(ctx context.Context, rawText string) *model.JournalMetadata {
	if h.Pipeline.Completer == nil {
		return &model.JournalMetadata{}
	}

	callCtx := ctx
	if h.Config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.Config.CallTimeout)
		defer cancel()
	}

	metadata, err := pipeline.NewMetadataExtractor(h.Pipeline.Completer, h.Config.MetadataSampleLength, h.log).Extract(callCtx, rawText)
	if err != nil {
		h.log.Warn("Metadata extraction failed, using file name as title", slog.Any("error", err))
		return &model.JournalMetadata{}
	}
	return metadata
}
