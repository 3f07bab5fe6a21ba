package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vehicle-parking/vpa-client/internal/core/ports"
)

func exerciseStorage(t *testing.T, s ports.Storage) {
	t.Helper()
	ctx := context.Background()

	if v, err := s.Get(ctx, ports.TokenKey); err != nil || v != "" {
		t.Fatalf("expected empty value, got %q %v", v, err)
	}
	if err := s.Set(ctx, ports.TokenKey, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := s.Get(ctx, ports.TokenKey); err != nil || v != "abc" {
		t.Fatalf("expected abc, got %q %v", v, err)
	}
	if err := s.Set(ctx, ports.TokenKey, "def"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, _ := s.Get(ctx, ports.TokenKey); v != "def" {
		t.Fatalf("expected overwrite, got %q", v)
	}
	if err := s.Delete(ctx, ports.TokenKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if v, _ := s.Get(ctx, ports.TokenKey); v != "" {
		t.Fatalf("expected deleted value, got %q", v)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	exerciseStorage(t, NewFile(path))
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	ctx := context.Background()

	if err := NewFile(path).Set(ctx, ports.TokenKey, "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := NewFile(path).Get(ctx, ports.TokenKey)
	if err != nil || v != "persisted" {
		t.Fatalf("expected persisted value, got %q %v", v, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFile(path).Get(context.Background(), ports.TokenKey); err == nil {
		t.Fatalf("expected decode error")
	}
}
