package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/infoboard/internal/errors"
	"github.com/hpungsan/infoboard/internal/store"
)

// Repo implements the store and notes repository interfaces over sqlite.
type Repo struct {
	db *sql.DB
}

// New wraps an initialized database handle.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// LoadServer reads one server's config and ordered section list.
func (r *Repo) LoadServer(ctx context.Context, serverID string) (map[string]string, []store.SectionRecord, error) {
	var configJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT config_json FROM servers WHERE id = ?`, serverID,
	).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return nil, nil, errors.NewNotFound("server " + serverID)
	}
	if err != nil {
		return nil, nil, errors.NewInternal(err)
	}

	var config map[string]string
	if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
		return nil, nil, errors.NewInternal(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, type, payload_json FROM sections WHERE server_id = ? ORDER BY position`,
		serverID,
	)
	if err != nil {
		return nil, nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var records []store.SectionRecord
	for rows.Next() {
		var record store.SectionRecord
		var payloadJSON string
		if err := rows.Scan(&record.Name, &record.Type, &payloadJSON); err != nil {
			return nil, nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &record.Payload); err != nil {
			return nil, nil, errors.NewInternal(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.NewInternal(err)
	}

	return config, records, nil
}

// SaveServer writes one server's full config and section list in a
// single transaction, replacing the previous section rows.
func (r *Repo) SaveServer(ctx context.Context, serverID string, config map[string]string, records []store.SectionRecord) error {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return errors.NewInternal(err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO servers (id, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json, updated_at = excluded.updated_at
	`, serverID, string(configJSON), now, now)
	if err != nil {
		return errors.NewInternal(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE server_id = ?`, serverID); err != nil {
		return errors.NewInternal(err)
	}

	for position, record := range records {
		payloadJSON, err := json.Marshal(record.Payload)
		if err != nil {
			return errors.NewInternal(err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sections (server_id, position, name, type, payload_json)
			VALUES (?, ?, ?, ?, ?)
		`, serverID, position, record.Name, record.Type, string(payloadJSON))
		if err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListServerIDs returns every known server id.
func (r *Repo) ListServerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM servers ORDER BY id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return ids, nil
}
