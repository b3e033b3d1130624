// Package preset stores named snapshots of calculator inputs.
//
// Records are opaque key/value bags: the stores persist them unchanged and
// never interpret the keys. Snapshot gives a typed view over the keys the
// calculator itself writes.
package preset

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// FileSuffix is appended to sanitized names by the file store.
const FileSuffix = ".json"

var (
	// ErrNotFound is returned when no preset exists under the requested name.
	ErrNotFound = errors.New("preset not found")
	// ErrInvalidName is returned for names that cannot be used as a storage key.
	ErrInvalidName = errors.New("invalid preset name")
)

// Record is the persisted content of a preset.
type Record map[string]any

// Store persists records under sanitized names.
type Store interface {
	Save(ctx context.Context, name string, rec Record) error
	Load(ctx context.Context, name string) (Record, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// SanitizeName maps a user-given name to its storage key: spaces become
// underscores, letters are lower-cased and a trailing ".json" is dropped.
func SanitizeName(name string) (string, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	key = strings.TrimSuffix(key, FileSuffix)

	if key == "" {
		return "", errors.Wrap(ErrInvalidName, "name is empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", errors.Wrapf(ErrInvalidName, "name %q contains a path separator", name)
	}
	return key, nil
}
