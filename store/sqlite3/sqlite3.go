// Package sqlite3 implements a content store in a SQLite database.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/filecab/filecab"
	"github.com/filecab/filecab/store"
)

var _ filecab.Store = &Store{}

// Store is a Sqlite-based content store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `blobs` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS blobs (
  digest BLOB PRIMARY KEY NOT NULL,
  data BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create the table `blobs`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, err
}

// Get gets the blob with digest `d`.
func (s *Store) Get(ctx context.Context, d filecab.Digest) (filecab.Blob, error) {
	const q = `SELECT data FROM blobs WHERE digest = $1`

	var b []byte
	err := s.db.QueryRowContext(ctx, q, d[:]).Scan(&b)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, filecab.ErrNotFound
	}
	return b, errors.Wrapf(err, "querying blob %s", d)
}

// Put adds a blob to the store if it wasn't already present.
// The insert is a no-op on conflict,
// which makes puts of identical content idempotent and race-safe.
func (s *Store) Put(ctx context.Context, b filecab.Blob) (filecab.Digest, bool, error) {
	const q = `INSERT INTO blobs (digest, data) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	d := b.Digest()
	res, err := s.db.ExecContext(ctx, q, d[:], []byte(b))
	if err != nil {
		return filecab.Zero, false, errors.Wrap(err, "inserting blob")
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return filecab.Zero, false, errors.Wrap(err, "counting affected rows")
	}

	return d, aff > 0, nil
}

// ListDigests produces all blob digests in the store, in lexicographic order.
func (s *Store) ListDigests(ctx context.Context, start filecab.Digest, f func(filecab.Digest) error) error {
	const q = `SELECT digest FROM blobs WHERE digest > $1 ORDER BY digest`
	return sqlutil.ForQueryRows(ctx, s.db, q, start[:], func(b []byte) error {
		return f(filecab.DigestFromBytes(b))
	})
}

func init() {
	store.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (filecab.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
