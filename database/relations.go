package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/model"
	"github.com/siherrmann/herbrag/sql"
)

// RelationsDBHandlerFunctions defines the interface for Relations database operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(ctx context.Context, relation *model.StoredRelation) error
	DeleteRelation(ctx context.Context, id uuid.UUID) error
	SelectRelationsFromEntities(ctx context.Context, entityIDs []uuid.UUID) ([]*model.GraphRelation, error)
	SelectRelationsToEntities(ctx context.Context, entityIDs []uuid.UUID, relationTypes []string) ([]*model.GraphRelation, error)
}

// RelationsDBHandler handles relation-related database operations
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler.
// The entities and chunks tables have to exist already.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationsDBHandler(db *helper.Database, force bool) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationsDbHandler := &RelationsDBHandler{
		db: db,
	}

	err := sql.LoadRelationsSql(relationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relations sql", err)
	}

	err = relationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return relationsDbHandler, nil
}

// CreateTable creates the 'relations' table in the database.
// If the table already exists, it does not create it again.
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relations();`)
	if err != nil {
		return helper.DatabaseError("init relations", err)
	}

	h.db.Logger.Info("Checked/created table relations")

	return nil
}

// InsertRelation inserts a relation or merges the metadata into the existing
// relation with the same source, verb and target.
func (h *RelationsDBHandler) InsertRelation(ctx context.Context, relation *model.StoredRelation) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_relation($1, $2, $3, $4, $5)`,
		relation.SourceEntityID,
		relation.TargetEntityID,
		relation.Relation,
		relation.ChunkID,
		relation.Metadata,
	)

	err := row.Scan(
		&relation.ID,
		&relation.SourceEntityID,
		&relation.TargetEntityID,
		&relation.Relation,
		&relation.ChunkID,
		&relation.Metadata,
		&relation.CreatedAt,
	)
	if err != nil {
		return helper.DatabaseError("scan", err)
	}

	return nil
}

// DeleteRelation deletes a relation by ID
func (h *RelationsDBHandler) DeleteRelation(ctx context.Context, id uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_relation($1)`, id)
	if err != nil {
		return helper.DatabaseError("exec", err)
	}
	return nil
}

// SelectRelationsFromEntities retrieves all outgoing relations of the entities
// together with both endpoints.
func (h *RelationsDBHandler) SelectRelationsFromEntities(ctx context.Context, entityIDs []uuid.UUID) ([]*model.GraphRelation, error) {
	if len(entityIDs) == 0 {
		return []*model.GraphRelation{}, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_from_entities($1::uuid[])`,
		pq.Array(uuidStrings(entityIDs)),
	)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}

	return scanGraphRelations(rows)
}

// SelectRelationsToEntities retrieves the incoming relations of the entities.
// If relationTypes is not empty only relations with one of these verbs are
// returned, compared case-insensitively.
func (h *RelationsDBHandler) SelectRelationsToEntities(ctx context.Context, entityIDs []uuid.UUID, relationTypes []string) ([]*model.GraphRelation, error) {
	if len(entityIDs) == 0 {
		return []*model.GraphRelation{}, nil
	}

	var typesParam interface{}
	if len(relationTypes) > 0 {
		lowered := make([]string, len(relationTypes))
		for i, relationType := range relationTypes {
			lowered[i] = strings.ToLower(relationType)
		}
		typesParam = pq.StringArray(lowered)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_to_entities($1::uuid[], $2::text[])`,
		pq.Array(uuidStrings(entityIDs)),
		typesParam,
	)
	if err != nil {
		return nil, helper.DatabaseError("query", err)
	}

	return scanGraphRelations(rows)
}

func scanGraphRelations(rows rowsScanner) ([]*model.GraphRelation, error) {
	defer rows.Close()

	relations := []*model.GraphRelation{}
	for rows.Next() {
		relation := &model.GraphRelation{}
		err := rows.Scan(
			&relation.ID,
			&relation.Relation,
			&relation.Source.ID,
			&relation.Source.Name,
			&relation.Source.Type,
			&relation.Target.ID,
			&relation.Target.Name,
			&relation.Target.Type,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		relations = append(relations, relation)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.DatabaseError("rows error", err)
	}

	return relations, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return values
}
