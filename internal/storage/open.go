package storage

import (
	"strings"

	"github.com/julianstephens/habitquest/internal/config"
)

// Kind names the backend a store target resolves to.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindJSON     Kind = "json"
	KindPostgres Kind = "postgres"
	KindRedis    Kind = "redis"
	KindKeyring  Kind = "keyring"
)

// KindOf classifies a --store value by its shape.
func KindOf(target string) Kind {
	switch {
	case target == string(KindKeyring):
		return KindKeyring
	case isPostgresURL(target):
		return KindPostgres
	case strings.HasPrefix(target, "redis://"), strings.HasPrefix(target, "rediss://"):
		return KindRedis
	case strings.HasSuffix(strings.ToLower(target), ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// New returns the backend for target. Postgres URLs given here must not
// embed a password; the keyring target is resolved by the caller, which
// passes the stored connection string to NewPostgresBackend directly.
func New(target string) (Backend, error) {
	switch KindOf(target) {
	case KindPostgres:
		if err := ValidateConnString(target); err != nil {
			return nil, err
		}
		return NewPostgresBackend(target), nil
	case KindRedis:
		return NewRedisBackend(target), nil
	case KindJSON:
		return NewJSONBackend(config.ExpandHome(target)), nil
	case KindKeyring:
		return nil, ErrKeyringTarget
	default:
		return NewSQLiteBackend(config.ExpandHome(target)), nil
	}
}
