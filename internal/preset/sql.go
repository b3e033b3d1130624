package preset

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// SQLStore keeps presets in the presets table of a migrated SQLite database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a store backed by db. The schema must already be migrated.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, name string, rec Record) error {
	key, err := SanitizeName(name)
	if err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encode preset %q", name)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO presets (name, data)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(data))
	if err != nil {
		return errors.Wrapf(err, "upsert preset %q", name)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, name string) (Record, error) {
	key, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}

	var data string
	err = s.db.QueryRowContext(ctx, `SELECT data FROM presets WHERE name = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "preset %q", name)
		}
		return nil, errors.Wrapf(err, "query preset %q", name)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, errors.Wrapf(err, "decode preset %q", name)
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM presets ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "query presets")
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan preset name")
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate presets")
	}
	return names, nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	key, err := SanitizeName(name)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, key)
	if err != nil {
		return errors.Wrapf(err, "delete preset %q", name)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete preset %q", name)
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotFound, "preset %q", name)
	}
	return nil
}
