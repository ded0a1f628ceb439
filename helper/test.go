package helper

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabase = "herbrag"
	testUsername = "herbrag"
	testPassword = "herbrag"
	testImage    = "pgvector/pgvector:pg16"
)

// MustStartPostgresContainer starts a pgvector enabled postgres container
// and returns its teardown function together with the mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		testImage,
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUsername),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("run postgres container", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("map postgres port", err)
	}

	return container.Terminate, port.Port(), nil
}

// ContainerDatabaseConfiguration returns the configuration of a container
// started by MustStartPostgresContainer on dbPort.
func ContainerDatabaseConfiguration(dbPort string) *DatabaseConfiguration {
	return &DatabaseConfiguration{
		Host:         "localhost",
		Port:         dbPort,
		Database:     testDatabase,
		Username:     testUsername,
		Password:     testPassword,
		Schema:       "public",
		SSLMode:      "disable",
		MaxOpenConns: 10,
	}
}

// SetTestDatabaseConfigEnvs points the database configuration at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	config := ContainerDatabaseConfiguration(dbPort)
	t.Setenv(envPrefix+"DB_HOST", config.Host)
	t.Setenv(envPrefix+"DB_PORT", config.Port)
	t.Setenv(envPrefix+"DB_DATABASE", config.Database)
	t.Setenv(envPrefix+"DB_USERNAME", config.Username)
	t.Setenv(envPrefix+"DB_PASSWORD", config.Password)
	t.Setenv(envPrefix+"DB_SCHEMA", config.Schema)
	t.Setenv(envPrefix+"DB_SSLMODE", config.SSLMode)
	t.Setenv(envPrefix+"DB_MAX_OPEN_CONNS", strconv.Itoa(config.MaxOpenConns))
}

// NewTestDatabase connects to the test container and exits the test binary on failure.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	db, err := NewDatabase("test", config, NewLogger(os.Stdout, slog.LevelDebug))
	if err != nil {
		log.Fatalf("error connecting to test database: %v", err)
	}
	return db
}
