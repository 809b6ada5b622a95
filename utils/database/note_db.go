package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moddingway/model"

	"github.com/jmoiron/sqlx"
)

const noteColumns = `note_id, user_id, content, is_warning, created_at, created_by, last_edited_at, last_edited_by`

// AddNote inserts a note and returns its id.
func (s *Store) AddNote(ctx context.Context, note *model.Note) (int64, error) {
	var id int64
	query := s.rebind(`INSERT INTO notes (user_id, content, is_warning, created_at, created_by, last_edited_at, last_edited_by)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING note_id`)
	err := s.db.QueryRowxContext(ctx, query,
		note.UserID, note.Content, note.IsWarning,
		utc(note.CreatedAt), note.CreatedBy,
		utc(note.LastEditedAt), note.LastEditedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note for user %d: %w", note.UserID, err)
	}
	return id, nil
}

// ListNotes returns a user's notes, newest first. warningsOnly filters to warnings.
func (s *Store) ListNotes(ctx context.Context, userID int64, warningsOnly bool) ([]model.Note, error) {
	notes := []model.Note{}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []interface{}{userID}
	if warningsOnly {
		query += ` AND is_warning = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC, note_id DESC`

	if err := s.db.SelectContext(ctx, &notes, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get notes for user %d: %w", userID, err)
	}
	return notes, nil
}

// GetNote retrieves a single note by id.
func (s *Store) GetNote(ctx context.Context, id int64) (*model.Note, error) {
	return getNote(ctx, s.db, id)
}

// UpdateNote replaces the content of a note and stamps the editor.
func (s *Store) UpdateNote(ctx context.Context, id int64, content, editorID string, at time.Time) error {
	query := s.rebind(`UPDATE notes SET content = ?, last_edited_at = ?, last_edited_by = ? WHERE note_id = ?`)
	return s.execOne(ctx, query, fmt.Sprintf("note %d", id), content, utc(at), editorID, id)
}

// DeleteNote removes a note and returns the deleted row.
func (s *Store) DeleteNote(ctx context.Context, id int64) (*model.Note, error) {
	var deleted *model.Note
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		note, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM notes WHERE note_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete note %d: %w", id, err)
		}
		deleted = note
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func getNote(ctx context.Context, q queryer, id int64) (*model.Note, error) {
	var note model.Note
	query := q.Rebind(`SELECT ` + noteColumns + ` FROM notes WHERE note_id = ?`)
	if err := sqlx.GetContext(ctx, q, &note, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return &note, nil
}
