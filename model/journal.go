package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Journal is an ingested academic paper.
type Journal struct {
	ID          int64     `json:"id"`
	RID         uuid.UUID `json:"rid"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Year        string    `json:"year,omitempty"`
	JournalName string    `json:"journal_name,omitempty"`
	Source      string    `json:"source,omitempty"`
	Content     string    `json:"content,omitempty" db:"-"` // Raw text for processing, not stored in DB
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// JournalMetadata is the bibliographic information detected in the raw text of a paper.
// HeaderPattern and FooterPattern are page decorations repeated on every page.
type JournalMetadata struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Year          string `json:"year"`
	JournalName   string `json:"journal"`
	HeaderPattern string `json:"header_pattern"`
	FooterPattern string `json:"footer_pattern"`
}

// Apply copies the non-empty bibliographic fields onto the journal.
func (m *JournalMetadata) Apply(journal *Journal) {
	if m == nil || journal == nil {
		return
	}
	if m.Title != "" {
		journal.Title = m.Title
	}
	if m.Author != "" {
		journal.Author = m.Author
	}
	if m.Year != "" {
		journal.Year = m.Year
	}
	if m.JournalName != "" {
		journal.JournalName = m.JournalName
	}
}

// NewJournalFromFile creates a Journal from a plain text file.
// The title defaults to the filename, and source to the file path.
func NewJournalFromFile(filePath string, metadata Metadata) (*Journal, error) {
	content, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, err
	}

	return NewJournal(filePath, string(content), metadata), nil
}

// NewJournal creates a Journal for already extracted text, titled after the file name.
func NewJournal(filePath string, content string, metadata Metadata) *Journal {
	filename := filepath.Base(filePath)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}

	return &Journal{
		Title:    title,
		Source:   filePath,
		Content:  content,
		Metadata: metadata,
	}
}
