package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocloud.dev/gcerrors"
)

func newTestStore(t *testing.T) (*BucketStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "files")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func TestSaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	key, err := store.Save(ctx, 7, "Contract.PDF", []byte("signed"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(key, "7/") || !strings.HasSuffix(key, ".pdf") {
		t.Errorf("Unexpected key %q", key)
	}
	if _, err := os.Stat(filepath.Join(dir, "7")); err != nil {
		t.Errorf("Expected owner prefix on disk, got %v", err)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "signed" {
		t.Errorf("Expected file content, got %q", data)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := store.Remove(ctx, key); err != nil {
		t.Errorf("Expected removing missing file to succeed, got %v", err)
	}
	if _, err := store.Open(ctx, key); gcerrors.Code(err) != gcerrors.NotFound {
		t.Errorf("Expected NotFound opening removed file, got %v", err)
	}
}

func TestSaveKeepsOnlyExtension(t *testing.T) {
	store, _ := newTestStore(t)

	key, err := store.Save(context.Background(), 3, "../../etc/notes.TXT", []byte("x"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(key, "..") || !strings.HasPrefix(key, "3/") || !strings.HasSuffix(key, ".txt") {
		t.Errorf("Unexpected key %q", key)
	}
}

func TestRejectsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, key := range []string{"", "/etc/passwd", "../../etc/passwd", "7/../../secret", "7//a"} {
		if _, err := store.Open(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Open(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if err := store.Remove(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Remove(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}
