package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/siherrmann/herbrag"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
)

const defaultQuery = "Which herbs can be used against headache and how are they prepared?"

// Usage: go run ./example/herbal <journal directory> [question]
// PDF and already extracted .txt journals are ingested.
// The completion model is configured through HERBRAG_LLM_* environment variables.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <journal directory> [question]", filepath.Base(os.Args[0]))
	}
	journalDir := os.Args[1]
	query := defaultQuery
	if len(os.Args) > 2 {
		query = strings.Join(os.Args[2:], " ")
	}

	llmConfig, err := helper.NewLLMConfiguration()
	if err != nil {
		log.Fatalf("Failed to load LLM configuration: %v", err)
	}

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := helper.ContainerDatabaseConfiguration(dbPort)

	h, err := herbrag.NewHerbRAG(dbConfig, 384, model.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create herbrag: %v", err)
	}
	defer h.Close()

	// Sentence window chunking, MiniLM embeddings and the configured LLM
	if err := h.UseDefaultPipeline(llmConfig); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	pdfs, err := filepath.Glob(filepath.Join(journalDir, "*.pdf"))
	if err != nil {
		log.Fatalf("Failed to list pdf files: %v", err)
	}
	texts, err := filepath.Glob(filepath.Join(journalDir, "*.txt"))
	if err != nil {
		log.Fatalf("Failed to list text files: %v", err)
	}
	paths := append(pdfs, texts...)
	if len(paths) == 0 {
		log.Fatalf("No pdf or text files found in %s", journalDir)
	}

	ctx := context.Background()
	for _, path := range paths {
		fmt.Printf("Ingesting %s...\n", filepath.Base(path))
		ingest := h.IngestPDF
		if filepath.Ext(path) == ".txt" {
			ingest = h.IngestTextFile
		}
		report, err := ingest(ctx, path)
		if err != nil {
			log.Printf("Failed to ingest %s: %v", path, err)
			continue
		}
		fmt.Printf("  %d chunks, %d/%d extracted, %d entities, %d relations\n",
			report.Chunks, report.Processed, report.Total, report.Entities, report.Relations)
	}

	fmt.Printf("\nQuestion: %s\n", query)
	result, err := h.HybridSearch(ctx, query, 0)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nQuery entities:\n")
	for _, entity := range result.QueryEntities {
		fmt.Printf("  %s (%s)\n", entity.Name, entity.Type)
	}

	fmt.Printf("\nHerbs:\n")
	for _, herb := range result.GraphResults.Herbs {
		fmt.Printf("  %s\n", herb.Name)
	}

	fmt.Printf("\nCompounds and effects:\n")
	for _, relation := range result.GraphResults.Relations {
		fmt.Printf("  %s %s %s (%s)\n", relation.Source.Name, relation.Relation, relation.Target.Name, relation.Target.Type)
	}

	fmt.Printf("\nTop chunks:\n")
	for i, chunk := range result.VectorResults {
		title := "unknown journal"
		if chunk.Journal != nil {
			title = chunk.Journal.Title
		}
		fmt.Printf("  %d. [%.3f] %s\n", i+1, chunk.Similarity, title)
	}

	fmt.Printf("\nAnswer:\n%s\n", result.Answer)
	fmt.Printf("\n%d chunks, %d herbs, %d compounds, %d effects\n",
		result.Summary.TotalChunks, result.Summary.TotalHerbs, result.Summary.TotalCompounds, result.Summary.TotalEffects)
}
