package helper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lib/pq"
)

// Database bundles the connection pool with the logger its handlers write to.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings a postgres connection described by dbConfig.
func NewDatabase(name string, dbConfig *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if dbConfig == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("database configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := sql.Open("postgres", dbConfig.ConnectionString())
	if err != nil {
		return nil, NewError("open database", err)
	}
	instance.SetMaxOpenConns(dbConfig.MaxOpenConns)
	instance.SetMaxIdleConns(dbConfig.MaxOpenConns / 2)
	instance.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = instance.PingContext(ctx)
	if err != nil {
		_ = instance.Close()
		return nil, NewError("ping database", Unavailable("postgres", err))
	}

	db := &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger.With("database", name),
	}
	db.Logger.Info("Connected to database", slog.String("host", dbConfig.Host), slog.String("database", dbConfig.Database))

	return db, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

// ConnectionString builds a lib/pq URL connection string.
func (c *DatabaseConfiguration) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// DatabaseError wraps err with trace like NewError. Errors the server answered
// with (constraint violations, missing rows, bad input) stay as they are, all
// others mean postgres could not be reached and are marked as
// ErrCollaboratorUnavailable.
func DatabaseError(trace string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NewError(trace, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		// connection exception, insufficient resources, operator intervention
		case "08", "53", "57":
			return NewError(trace, Unavailable("postgres", err))
		}
		return NewError(trace, err)
	}

	return NewError(trace, Unavailable("postgres", err))
}
