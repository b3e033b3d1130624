package preset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// FileStore keeps one JSON file per preset inside a directory.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore returns a store rooted at dir on fs. The directory is created on first save.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// NewOSFileStore returns a FileStore on the local filesystem.
func NewOSFileStore(dir string) *FileStore {
	return NewFileStore(afero.NewOsFs(), dir)
}

func (s *FileStore) path(name string) (string, error) {
	key, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+FileSuffix), nil
}

func (s *FileStore) Save(_ context.Context, name string, rec Record) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "encode preset %q", name)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create presets directory")
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return errors.Wrapf(err, "write preset %q", name)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, name string) (Record, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "preset %q", name)
		}
		return nil, errors.Wrapf(err, "read preset %q", name)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "decode preset %q", name)
	}
	return rec, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "read presets directory")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), FileSuffix))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	exists, err := afero.Exists(s.fs, p)
	if err != nil {
		return errors.Wrapf(err, "stat preset %q", name)
	}
	if !exists {
		return errors.Wrapf(ErrNotFound, "preset %q", name)
	}

	if err := s.fs.Remove(p); err != nil {
		return errors.Wrapf(err, "remove preset %q", name)
	}
	return nil
}
