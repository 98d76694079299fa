package boltdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

const schemaVersion = "1"

var (
	bucketMeta         = []byte("meta")
	bucketMessages     = []byte("messages")
	bucketMessageIndex = []byte("message_index")

	keySchemaVersion = []byte("schema_version")
)

// DB is an open BoltDB file holding chat history.
type DB struct {
	bolt *bolt.DB
	path string
}

// Open opens the history file at path, creating it and its directory when
// needed. Only one process can hold the file; a second one fails after a
// second instead of blocking.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("%s is locked by another brightctl process", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := bdb.Update(initSchema); err != nil {
		bdb.Close()
		return nil, err
	}
	return &DB{bolt: bdb, path: path}, nil
}

func initSchema(tx *bolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return fmt.Errorf("create meta bucket: %w", err)
	}
	if v := meta.Get(keySchemaVersion); v != nil && string(v) != schemaVersion {
		return fmt.Errorf("history schema version %s is not supported (want %s)", v, schemaVersion)
	}
	for _, name := range [][]byte{bucketMessages, bucketMessageIndex} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	return meta.Put(keySchemaVersion, []byte(schemaVersion))
}

// Path returns the database file.
func (d *DB) Path() string {
	return d.path
}

// Close releases the file lock.
func (d *DB) Close() error {
	return d.bolt.Close()
}

// Bolt exposes the raw handle to the stores of this package.
func (d *DB) Bolt() *bolt.DB {
	return d.bolt
}
