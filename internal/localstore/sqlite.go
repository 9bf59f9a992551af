package localstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite is the durable Store implementation. The driver is a pure-Go
// sqlite build, so the store works on any platform without cgo and stays
// available regardless of network conditions.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the kv database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create local store directory")
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, errors.Wrap(err, "open local store")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping local store")
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create kv table")
	}

	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s", key)
	}

	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, upsertSQL, key, value, time.Now().UnixMilli())
	if err != nil {
		return errors.Wrapf(err, "set %s", key)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "remove %s", key)
	}
	return nil
}

func (s *SQLite) Index(ctx context.Context, indexKey string) ([]string, error) {
	raw, ok, err := s.Get(ctx, indexKey)
	if err != nil || !ok {
		return nil, err
	}
	return decodeIndex(indexKey, raw)
}

func (s *SQLite) PutRecord(ctx context.Context, key string, value []byte, indexKey, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UnixMilli()
		if _, err := tx.ExecContext(ctx, upsertSQL, key, value, now); err != nil {
			return errors.Wrapf(err, "put %s", key)
		}
		if indexKey == "" {
			return nil
		}

		ids, err := indexInTx(ctx, tx, indexKey)
		if err != nil {
			return err
		}
		return writeIndexInTx(ctx, tx, indexKey, appendID(ids, id), now)
	})
}

func (s *SQLite) DeleteRecord(ctx context.Context, key string, indexKey, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
			return errors.Wrapf(err, "delete %s", key)
		}
		if indexKey == "" {
			return nil
		}

		ids, err := indexInTx(ctx, tx, indexKey)
		if err != nil {
			return err
		}
		return writeIndexInTx(ctx, tx, indexKey, removeID(ids, id), time.Now().UnixMilli())
	})
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

const upsertSQL = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin local store tx")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit local store tx")
	}
	return nil
}

func indexInTx(ctx context.Context, tx *sql.Tx, indexKey string) ([]string, error) {
	var raw []byte
	err := tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", indexKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get index %s", indexKey)
	}
	return decodeIndex(indexKey, raw)
}

func writeIndexInTx(ctx context.Context, tx *sql.Tx, indexKey string, ids []string, now int64) error {
	raw, err := sonic.Marshal(ids)
	if err != nil {
		return errors.Wrapf(err, "encode index %s", indexKey)
	}
	if _, err := tx.ExecContext(ctx, upsertSQL, indexKey, raw, now); err != nil {
		return errors.Wrapf(err, "write index %s", indexKey)
	}
	return nil
}

func decodeIndex(indexKey string, raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var ids []string
	if err := sonic.Unmarshal(raw, &ids); err != nil {
		return nil, errors.Wrapf(err, "decode index %s", indexKey)
	}
	return ids, nil
}
