package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestStore_InitializeDefault(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "theme"), "", zerolog.Nop())
	s.Initialize()
	if s.Current() != Light {
		t.Fatalf("expected light theme, got %q", s.Current())
	}
}

func TestStore_PersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "theme")
	if err := NewStore(path, Light, zerolog.Nop()).Set(Dark); err != nil {
		t.Fatalf("set: %v", err)
	}

	s := NewStore(path, Light, zerolog.Nop())
	s.Initialize()
	if s.Current() != Dark {
		t.Fatalf("expected dark theme, got %q", s.Current())
	}
}

func TestStore_IgnoresUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme")
	if err := os.WriteFile(path, []byte("neon"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStore(path, Dark, zerolog.Nop())
	s.Initialize()
	if s.Current() != Dark {
		t.Fatalf("expected fallback theme, got %q", s.Current())
	}
	if err := s.Set("neon"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}
