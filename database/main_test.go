package database

import (
	"context"
	"log"
	"testing"

	"github.com/siherrmann/herbrag/helper"
	"github.com/siherrmann/herbrag/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)

	err = sql.Init(database.Instance)
	require.NoError(t, err, "failed to initialize database extensions")

	return database
}

type testHandlers struct {
	journals  *JournalsDBHandler
	chunks    *ChunksDBHandler
	entities  *EntitiesDBHandler
	relations *RelationsDBHandler
}

// initHandlers creates all handlers in dependency order.
func initHandlers(t *testing.T, database *helper.Database) *testHandlers {
	journals, err := NewJournalsDBHandler(database, true)
	require.NoError(t, err, "Expected NewJournalsDBHandler to not return an error")
	chunks, err := NewChunksDBHandler(database, 3, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")
	entities, err := NewEntitiesDBHandler(database, true)
	require.NoError(t, err, "Expected NewEntitiesDBHandler to not return an error")
	relations, err := NewRelationsDBHandler(database, true)
	require.NoError(t, err, "Expected NewRelationsDBHandler to not return an error")

	return &testHandlers{
		journals:  journals,
		chunks:    chunks,
		entities:  entities,
		relations: relations,
	}
}
