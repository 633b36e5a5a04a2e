// Package theme applies the stored colour theme at start-up.
package theme

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	Light = "light"
	Dark  = "dark"
)

// Store implements ports.ThemeInitializer. The theme is kept in a small
// file so it survives restarts.
type Store struct {
	path     string
	fallback string
	log      zerolog.Logger

	mu      sync.RWMutex
	current string
}

func NewStore(path, fallback string, log zerolog.Logger) *Store {
	if !valid(fallback) {
		fallback = Light
	}
	return &Store{path: path, fallback: fallback, log: log, current: fallback}
}

func valid(name string) bool { return name == Light || name == Dark }

// Initialize loads the persisted theme, falling back to the default.
func (s *Store) Initialize() {
	name := s.fallback
	if s.path != "" {
		raw, err := os.ReadFile(s.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			s.log.Warn().Err(err).Str("path", s.path).Msg("failed to read theme")
		case valid(strings.TrimSpace(string(raw))):
			name = strings.TrimSpace(string(raw))
		default:
			s.log.Warn().Str("path", s.path).Msg("ignoring unknown stored theme")
		}
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
}

// Current returns the applied theme.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set applies and persists a theme.
func (s *Store) Set(name string) error {
	if !valid(name) {
		return errors.New("theme must be light or dark")
	}
	if s.path != "" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(s.path, []byte(name+"\n"), 0o644); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}
