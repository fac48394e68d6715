package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

var _ domain.KeyValueStore = (*SQLStore)(nil)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key   TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`

// SQLStore keeps slots in a two-column table. The same statements run on
// postgres and sqlite; sqlx rebinds the placeholders per driver.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	return db, nil
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, kvSchema)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	query := s.db.Rebind(`SELECT payload FROM kv_slots WHERE slot_key = ?`)

	err := s.db.GetContext(ctx, &payload, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := s.db.Rebind(`
		INSERT INTO kv_slots (slot_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot_key) DO UPDATE
		SET payload = excluded.payload,
		    updated_at = excluded.updated_at`)

	_, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM kv_slots WHERE slot_key = ?`)
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
