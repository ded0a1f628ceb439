package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	"github.com/siherrmann/herbrag/sql"
)

// EntitiesDBHandlerFunctions defines the interface for Entities database operations.
type EntitiesDBHandlerFunctions interface {
	InsertEntity(ctx context.Context, entity *model.Entity) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error
	SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	SelectEntitiesBySearch(ctx context.Context, searchTerm string, entityType *model.EntityType, limit int) ([]*model.Entity, error)
	SelectEntitiesByType(ctx context.Context, entityType model.EntityType, limit int) ([]*model.Entity, error)
}

// EntitiesDBHandler handles entity-related database operations
type EntitiesDBHandler struct {
	db *helper.Database
}

// NewEntitiesDBHandler creates a new entities database handler.
// It initializes the database connection and loads entity-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEntitiesDBHandler(db *helper.Database, force bool) (*EntitiesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	entitiesDbHandler := &EntitiesDBHandler{
		db: db,
	}

	err := sql.LoadEntitiesSql(entitiesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load entities sql", err)
	}

	err = entitiesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EntitiesDBHandler")

	return entitiesDbHandler, nil
}

// CreateTable creates the 'entities' table in the database.
// If the table already exists, it does not create it again.
func (h *EntitiesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_entities();`)
	if err != nil {
		return helper.DatabaseError("init entities", err)
	}

	h.db.Logger.Info("Checked/created table entities")

	return nil
}

// InsertEntity inserts an entity or, if one with the same normalized name and
// type exists, merges the metadata into it. The entity receives the stored id,
// display name and upper-cased type.
func (h *EntitiesDBHandler) InsertEntity(ctx context.Context, entity *model.Entity) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_entity($1, $2, $3, $4)`,
		entity.Name,
		entity.NormalizedName,
		entity.Type,
		entity.Metadata,
	)

	err := scanEntity(row, entity)
	if err != nil {
		return helper.DatabaseError("scan", err)
	}

	return nil
}

// DeleteEntity deletes an entity and its relations.
func (h *EntitiesDBHandler) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_entity($1)`, id)
	if err != nil {
		return helper.DatabaseError("exec", err)
	}
	return nil
}

// SelectEntity retrieves an entity by ID
func (h *EntitiesDBHandler) SelectEntity(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_entity($1)`, id)

	entity := &model.Entity{}
	err := scanEntity(row, entity)
	if err != nil {
		return nil, helper.DatabaseError("scan", err)
	}

	return entity, nil
}

// SelectEntitiesBySearch finds entities whose name contains searchTerm, ignoring case.
// A nil entityType matches every type. Shorter names come first.
func (h *EntitiesDBHandler) SelectEntitiesBySearch(ctx context.Context, searchTerm string, entityType *model.EntityType, limit int) ([]*model.Entity, error) {
	var typeParam interface{}
	if entityType != nil {
		typeParam = string(*entityType)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_search($1, $2, $3)`,
		searchTerm,
		typeParam,
		limit,
	)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}

	return scanEntities(rows)
}

// SelectEntitiesByType retrieves up to limit entities of a type ordered by name.
func (h *EntitiesDBHandler) SelectEntitiesByType(ctx context.Context, entityType model.EntityType, limit int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_entities_by_type($1, $2)`,
		string(entityType),
		limit,
	)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}

	return scanEntities(rows)
}

func scanEntity(row rowScanner, entity *model.Entity) error {
	return row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.NormalizedName,
		&entity.Type,
		&entity.Metadata,
		&entity.CreatedAt,
	)
}

func scanEntities(rows rowsScanner) ([]*model.Entity, error) {
	defer rows.Close()

	entities := []*model.Entity{}
	for rows.Next() {
		entity := &model.Entity{}
		err := scanEntity(rows, entity)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		entities = append(entities, entity)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.DatabaseError("rows error", err)
	}

	return entities, nil
}
