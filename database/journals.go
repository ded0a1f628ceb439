package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	loadSql "github.com/siherrmann/herbrag/sql"
)

// JournalsDBHandlerFunctions defines the interface for Journals database operations.
type JournalsDBHandlerFunctions interface {
	InsertJournal(ctx context.Context, journal *model.Journal) error
	DeleteJournal(ctx context.Context, rid uuid.UUID) error
	SelectJournal(ctx context.Context, rid uuid.UUID) (*model.Journal, error)
	SelectAllJournals(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.Journal, error)
	SelectJournalsByChunkIDs(ctx context.Context, chunkIDs []int) (map[int]*model.JournalInfo, error)
}

// JournalsDBHandler handles journal-related database operations
type JournalsDBHandler struct {
	db *helper.Database
}

// NewJournalsDBHandler creates a new journals database handler.
// It loads the journal SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewJournalsDBHandler(db *helper.Database, force bool) (*JournalsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	journalsDbHandler := &JournalsDBHandler{
		db: db,
	}

	err := loadSql.LoadJournalsSql(journalsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load journals sql", err)
	}

	err = journalsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized JournalsDBHandler")

	return journalsDbHandler, nil
}

// CreateTable creates the 'journals' table if it does not exist.
func (h *JournalsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_journals();`)
	if err != nil {
		return helper.DatabaseError("init journals", err)
	}

	h.db.Logger.Info("Checked/created table journals")

	return nil
}

// InsertJournal inserts a new journal and fills its generated fields.
func (h *JournalsDBHandler) InsertJournal(ctx context.Context, journal *model.Journal) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_journal($1, $2, $3, $4, $5, $6)`,
		journal.Title,
		journal.Author,
		journal.Year,
		journal.JournalName,
		journal.Source,
		journal.Metadata,
	)

	err := scanJournal(row, journal)
	if err != nil {
		return helper.DatabaseError("scan", err)
	}

	return nil
}

// DeleteJournal deletes a journal with its chunks.
func (h *JournalsDBHandler) DeleteJournal(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_journal($1)`, rid)
	if err != nil {
		return helper.DatabaseError("exec", err)
	}
	return nil
}

// SelectJournal retrieves a journal by its RID.
func (h *JournalsDBHandler) SelectJournal(ctx context.Context, rid uuid.UUID) (*model.Journal, error) {
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_journal($1)`, rid)

	journal := &model.Journal{}
	err := scanJournal(row, journal)
	if err != nil {
		return nil, helper.DatabaseError("scan", err)
	}

	return journal, nil
}

// SelectAllJournals pages through the journals, newest first.
// Pass the CreatedAt of the last journal of a page to get the next one.
func (h *JournalsDBHandler) SelectAllJournals(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.Journal, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_journals($1, $2)`, lastCreatedAt, limit)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}
	defer rows.Close()

	journals := []*model.Journal{}
	for rows.Next() {
		journal := &model.Journal{}
		err := scanJournal(rows, journal)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		journals = append(journals, journal)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.DatabaseError("rows error", err)
	}

	return journals, nil
}

// SelectJournalsByChunkIDs looks up the citation info of the journals owning the chunks.
// Chunks without a journal are missing from the map.
func (h *JournalsDBHandler) SelectJournalsByChunkIDs(ctx context.Context, chunkIDs []int) (map[int]*model.JournalInfo, error) {
	infos := make(map[int]*model.JournalInfo, len(chunkIDs))
	if len(chunkIDs) == 0 {
		return infos, nil
	}

	ids := make([]int64, len(chunkIDs))
	for i, id := range chunkIDs {
		ids[i] = int64(id)
	}

	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_journals_by_chunk_ids($1)`, pq.Int64Array(ids))
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chunkID int
		var journalID int64
		info := &model.JournalInfo{}
		err := rows.Scan(&chunkID, &journalID, &info.Title, &info.Author, &info.Year)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		infos[chunkID] = info
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.DatabaseError("rows error", err)
	}

	return infos, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type rowsScanner interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

func scanJournal(row rowScanner, journal *model.Journal) error {
	return row.Scan(
		&journal.ID,
		&journal.RID,
		&journal.Title,
		&journal.Author,
		&journal.Year,
		&journal.JournalName,
		&journal.Source,
		&journal.Metadata,
		&journal.CreatedAt,
	)
}
