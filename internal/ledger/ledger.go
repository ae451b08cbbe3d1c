// Package ledger is the append-only store of creation records: one row
// per successful generation action. Rows are never deleted; the only
// mutation is the owner toggling the publish flag.
//
// Append keeps no idempotency key — a client retry that re-triggers a
// handler produces a second row. Callers needing dedup must handle it
// upstream.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quickai/quickai-golang/internal/models"
)

// ErrNotFound is returned when a creation does not exist or is not
// owned by the caller.
var ErrNotFound = errors.New("creation not found")

// Ledger persists and retrieves creation records.
type Ledger struct {
	DB *sql.DB
}

func New(db *sql.DB) *Ledger {
	return &Ledger{DB: db}
}

const creationColumns = "id, user_id, prompt, content, type, publish, created_at, updated_at"

// Append inserts a new creation with publish=false and system-assigned
// id and timestamps, and returns the row as stored. A failed insert
// produced no creation; the error propagates as-is.
func (l *Ledger) Append(ctx context.Context, userID int64, prompt, content, creationType string) (models.Creation, error) {
	res, err := l.DB.ExecContext(ctx, `
		INSERT INTO creations (user_id, prompt, content, type, publish)
		VALUES (?, ?, ?, ?, FALSE)
	`, userID, prompt, content, creationType)
	if err != nil {
		return models.Creation{}, fmt.Errorf("inserting creation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Creation{}, fmt.Errorf("reading creation id: %w", err)
	}

	// Read back the system-assigned fields so the caller sees the row
	// exactly as stored.
	row := l.DB.QueryRowContext(ctx,
		"SELECT "+creationColumns+" FROM creations WHERE id = ?", id)
	creation, err := scanCreation(row)
	if err != nil {
		return models.Creation{}, fmt.Errorf("reading back creation %d: %w", id, err)
	}
	return creation, nil
}

// ListByOwner returns all creations for the given owner, newest first.
func (l *Ledger) ListByOwner(ctx context.Context, userID int64) ([]models.Creation, error) {
	rows, err := l.DB.QueryContext(ctx,
		"SELECT "+creationColumns+" FROM creations WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("listing creations for user %d: %w", userID, err)
	}
	defer rows.Close()
	return collectCreations(rows)
}

// ListPublished returns every published creation regardless of owner,
// newest first. This is the global public feed.
func (l *Ledger) ListPublished(ctx context.Context) ([]models.Creation, error) {
	rows, err := l.DB.QueryContext(ctx,
		"SELECT "+creationColumns+" FROM creations WHERE publish = TRUE ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing published creations: %w", err)
	}
	defer rows.Close()
	return collectCreations(rows)
}

// TogglePublish flips the publish flag on an owner-matched creation and
// returns the new value. ErrNotFound covers both a missing row and a
// row owned by someone else.
func (l *Ledger) TogglePublish(ctx context.Context, creationID, userID int64) (bool, error) {
	res, err := l.DB.ExecContext(ctx, `
		UPDATE creations SET publish = NOT publish, updated_at = NOW()
		WHERE id = ? AND user_id = ?
	`, creationID, userID)
	if err != nil {
		return false, fmt.Errorf("toggling publish on creation %d: %w", creationID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggling publish on creation %d: %w", creationID, err)
	}
	if affected == 0 {
		return false, ErrNotFound
	}

	var publish bool
	err = l.DB.QueryRowContext(ctx,
		"SELECT publish FROM creations WHERE id = ?", creationID).Scan(&publish)
	if err != nil {
		return false, fmt.Errorf("reading publish flag on creation %d: %w", creationID, err)
	}
	return publish, nil
}

func scanCreation(row *sql.Row) (models.Creation, error) {
	var c models.Creation
	err := row.Scan(&c.ID, &c.UserID, &c.Prompt, &c.Content, &c.Type, &c.Publish, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func collectCreations(rows *sql.Rows) ([]models.Creation, error) {
	creations := []models.Creation{}
	for rows.Next() {
		var c models.Creation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Prompt, &c.Content, &c.Type, &c.Publish, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning creation row: %w", err)
		}
		creations = append(creations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating creation rows: %w", err)
	}
	return creations, nil
}
