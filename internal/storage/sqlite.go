package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/IshaanNene/LeadGoat/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leads (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	identity_key       TEXT    NOT NULL UNIQUE,
	name               TEXT    NOT NULL,
	category           TEXT    NOT NULL DEFAULT '',
	phone              TEXT    NOT NULL DEFAULT '',
	location           TEXT    NOT NULL DEFAULT '',
	website            TEXT    NOT NULL DEFAULT '',
	source             TEXT    NOT NULL DEFAULT '',
	score              INTEGER NOT NULL DEFAULT 0,
	potential_score    INTEGER NOT NULL DEFAULT 0,
	potential_category TEXT    NOT NULL DEFAULT '',
	ai_notes           TEXT    NOT NULL DEFAULT '',
	created_at         TEXT    NOT NULL,
	updated_at         TEXT    NOT NULL
);
`

const leadColumns = `id, identity_key, name, category, phone, location, website,
	source, score, potential_score, potential_category, ai_notes, created_at, updated_at`

// SQLiteStore persists leads in a local SQLite database. It is the default
// backend: the CLI works with zero infrastructure.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "open", Err: err}
	}

	// A single writer keeps each upsert an atomic store operation.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &types.StorageError{Backend: "sqlite", Op: "init schema", Err: err}
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "sqlite_storage"),
	}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) FindByKey(ctx context.Context, key string) (*types.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE identity_key = ?`, key)

	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrLeadNotFound
	}
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "find", Err: err}
	}
	return lead, nil
}

func (s *SQLiteStore) Create(ctx context.Context, lead *types.Lead) (*types.Lead, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
INSERT INTO leads (identity_key, name, category, phone, location, website,
	source, score, potential_score, potential_category, ai_notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.IdentityKey, lead.Name, lead.Category, lead.Phone, lead.Location,
		lead.Website, string(lead.Source), lead.Score, lead.PotentialScore,
		string(lead.PotentialCategory), lead.AINotes,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "create", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "create", Err: err}
	}

	created := *lead
	created.ID = strconv.FormatInt(id, 10)
	created.CreatedAt = now
	created.UpdatedAt = now
	s.logger.Debug("lead created", "id", created.ID, "key", created.IdentityKey)
	return &created, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, patch types.LeadPatch) (*types.Lead, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "update", Err: fmt.Errorf("bad id %q: %w", id, err)}
	}

	var sets []string
	var args []any
	add := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Website != nil {
		add("website", *patch.Website)
	}
	if patch.Score != nil {
		add("score", *patch.Score)
	}
	if patch.PotentialScore != nil {
		add("potential_score", *patch.PotentialScore)
	}
	if patch.PotentialCategory != nil {
		add("potential_category", string(*patch.PotentialCategory))
	}
	if patch.AINotes != nil {
		add("ai_notes", *patch.AINotes)
	}
	add("updated_at", time.Now().UTC().Format(time.RFC3339Nano))

	args = append(args, rowID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, types.ErrLeadNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, rowID)
	lead, err := scanLead(row)
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "update", Err: err}
	}
	return lead, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*types.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY id`)
	if err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "list", Err: err}
	}
	defer rows.Close()

	var leads []*types.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, &types.StorageError{Backend: "sqlite", Op: "list", Err: err}
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StorageError{Backend: "sqlite", Op: "list", Err: err}
	}
	return leads, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*types.Lead, error) {
	var lead types.Lead
	var id int64
	var source, category, createdAt, updatedAt string

	err := row.Scan(
		&id, &lead.IdentityKey, &lead.Name, &lead.Category, &lead.Phone,
		&lead.Location, &lead.Website, &source, &lead.Score,
		&lead.PotentialScore, &category, &lead.AINotes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.ID = strconv.FormatInt(id, 10)
	lead.Source = types.Source(source)
	lead.PotentialCategory = types.PotentialCategory(category)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		lead.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		lead.UpdatedAt = t
	}
	return &lead, nil
}
