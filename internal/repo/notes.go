package repo

import (
	"context"
	"database/sql"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/notes"
)

// InsertNote stores a new note.
func (r *Repo) InsertNote(ctx context.Context, n *notes.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, server_id, status, note_text, submitter_id, submitter_name, message_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.ServerID, n.Status, n.Text, n.SubmitterID, n.SubmitterName, nullable(n.MessageID), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetNote retrieves a note by id within a server.
func (r *Repo) GetNote(ctx context.Context, serverID, id string) (*notes.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, server_id, status, note_text, submitter_id, submitter_name, message_id, created_at, updated_at
		FROM notes WHERE server_id = ? AND id = ?
	`, serverID, id)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("note " + id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// ListNotes returns a server's notes in submission order.
func (r *Repo) ListNotes(ctx context.Context, serverID string) ([]notes.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, server_id, status, note_text, submitter_id, submitter_name, message_id, created_at, updated_at
		FROM notes WHERE server_id = ? ORDER BY created_at, id
	`, serverID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []notes.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// UpdateNote rewrites a note's mutable fields.
func (r *Repo) UpdateNote(ctx context.Context, n *notes.Note) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notes SET status = ?, note_text = ?, message_id = ?, updated_at = ?
		WHERE server_id = ? AND id = ?
	`, n.Status, n.Text, nullable(n.MessageID), n.UpdatedAt, n.ServerID, n.ID)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("note " + n.ID)
	}
	return nil
}

// DeleteNote removes a note permanently.
func (r *Repo) DeleteNote(ctx context.Context, serverID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE server_id = ? AND id = ?`, serverID, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("note " + id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanNote(row scannable) (*notes.Note, error) {
	var n notes.Note
	var messageID sql.NullString
	err := row.Scan(&n.ID, &n.ServerID, &n.Status, &n.Text,
		&n.SubmitterID, &n.SubmitterName, &messageID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if messageID.Valid {
		n.MessageID = messageID.String
	}
	return &n, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
