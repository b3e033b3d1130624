package preset

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Simplici0/costcalc/internal/logger"
)

// Service exposes a Store with boolean outcomes. Failures are logged and never
// returned to the caller; a missing preset is a normal outcome and is not logged,
// and an unusable name is the caller's mistake so it is only a warning.
type Service struct {
	store Store
	log   *logger.Logger
}

// NewService wraps store.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Save stores rec under name and reports whether it succeeded.
func (s *Service) Save(ctx context.Context, name string, rec Record) bool {
	if err := s.store.Save(ctx, name, rec); err != nil {
		s.logFailure("error saving preset", name, err)
		return false
	}
	s.log.Infow("preset saved", "name", name)
	return true
}

// Load returns the preset stored under name and whether it was found.
func (s *Service) Load(ctx context.Context, name string) (Record, bool) {
	rec, err := s.store.Load(ctx, name)
	if err != nil {
		s.logFailure("error loading preset", name, err)
		return nil, false
	}
	return rec, true
}

// List returns all preset names, or an empty list when they cannot be read.
func (s *Service) List(ctx context.Context) []string {
	names, err := s.store.List(ctx)
	if err != nil {
		s.log.Errorw("error getting presets", "error", err)
		return []string{}
	}
	return names
}

// Delete removes the preset stored under name and reports whether one was removed.
func (s *Service) Delete(ctx context.Context, name string) bool {
	if err := s.store.Delete(ctx, name); err != nil {
		s.logFailure("error deleting preset", name, err)
		return false
	}
	s.log.Infow("preset deleted", "name", name)
	return true
}

func (s *Service) logFailure(msg, name string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrInvalidName):
		s.log.Warnw(msg, "name", name, "error", err)
	default:
		s.log.Errorw(msg, "name", name, "error", err)
	}
}
