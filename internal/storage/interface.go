package storage

import "errors"

// ErrNotFound is returned by Backend.Get when no record exists under the key.
var ErrNotFound = errors.New("record not found")

// ErrKeyringTarget is returned by New for the "keyring" target, whose
// connection string has to be read from the OS keyring first.
var ErrKeyringTarget = errors.New("keyring store must be resolved to a connection string")

// errNotLoaded is returned when a backend is used before Init or Load.
var errNotLoaded = errors.New("storage not loaded")

// Record is one named JSON value.
type Record struct {
	Key   string
	Value []byte
}

// Backend is a key-value record store. Values are opaque JSON documents.
type Backend interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Records
	Get(key string) ([]byte, error)
	// Put writes every record or none of them.
	Put(records ...Record) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by SQL backends with a versioned schema.
type Migrator interface {
	// Open connects without checking the schema version, so an outdated
	// store can still be migrated.
	Open() error
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (current, latest int, err error)
}
