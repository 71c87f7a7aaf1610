package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "autoslides.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func backends(t *testing.T) map[string]Backend {
	s3Backend, _ := newTestS3Backend(t)
	return map[string]Backend{
		"sqlite": newTestDatabase(t),
		"memory": NewMemory(),
		"s3":     s3Backend,
	}
}

func TestPropertiesRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			props := backend.Properties("doc-1")

			if _, ok, err := props.GetProperty(ctx, "missing"); err != nil || ok {
				t.Fatalf("GetProperty(missing) = ok %v, err %v; want not found", ok, err)
			}

			if err := props.SetProperty(ctx, "sAdvance", "3"); err != nil {
				t.Fatalf("SetProperty: %v", err)
			}
			got, ok, err := props.GetProperty(ctx, "sAdvance")
			if err != nil || !ok || got != "3" {
				t.Fatalf("GetProperty(sAdvance) = %q, %v, %v; want 3", got, ok, err)
			}

			if err := props.SetProperty(ctx, "sAdvance", "5"); err != nil {
				t.Fatalf("SetProperty overwrite: %v", err)
			}
			got, _, _ = props.GetProperty(ctx, "sAdvance")
			if got != "5" {
				t.Errorf("sAdvance = %q, want 5", got)
			}
		})
	}
}

func TestSetPropertiesMerge(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			props := backend.Properties("doc-1")
			if err := props.SetProperties(ctx, map[string]string{"a": "1", "shortUrl": "https://tinyurl.com/x"}, false); err != nil {
				t.Fatalf("SetProperties: %v", err)
			}
			if err := props.SetProperties(ctx, map[string]string{"a": "2", "b": "3"}, false); err != nil {
				t.Fatalf("SetProperties merge: %v", err)
			}

			all, err := props.GetProperties(ctx)
			if err != nil {
				t.Fatalf("GetProperties: %v", err)
			}
			want := map[string]string{"a": "2", "b": "3", "shortUrl": "https://tinyurl.com/x"}
			if fmt.Sprint(all) != fmt.Sprint(want) {
				t.Errorf("GetProperties = %v, want %v", all, want)
			}
		})
	}
}

func TestSetPropertiesDeleteAllOthers(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			props := backend.Properties("doc-1")
			if err := props.SetProperties(ctx, map[string]string{"a": "1", "shortUrl": "x"}, false); err != nil {
				t.Fatalf("SetProperties: %v", err)
			}
			if err := props.SetProperties(ctx, map[string]string{"b": "2"}, true); err != nil {
				t.Fatalf("SetProperties replace: %v", err)
			}

			all, err := props.GetProperties(ctx)
			if err != nil {
				t.Fatalf("GetProperties: %v", err)
			}
			if len(all) != 1 || all["b"] != "2" {
				t.Errorf("GetProperties = %v, want only b=2", all)
			}
		})
	}
}

func TestDeleteProperty(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			props := backend.Properties("doc-1")
			if err := props.SetProperties(ctx, map[string]string{"repeat": "on", "start": "on"}, false); err != nil {
				t.Fatalf("SetProperties: %v", err)
			}
			if err := props.DeleteProperty(ctx, "repeat"); err != nil {
				t.Fatalf("DeleteProperty: %v", err)
			}
			// deleting a missing key is not an error
			if err := props.DeleteProperty(ctx, "repeat"); err != nil {
				t.Fatalf("DeleteProperty again: %v", err)
			}

			if _, ok, _ := props.GetProperty(ctx, "repeat"); ok {
				t.Error("repeat still set after delete")
			}
			if v, _, _ := props.GetProperty(ctx, "start"); v != "on" {
				t.Errorf("start = %q, want on", v)
			}
		})
	}
}

func TestPropertiesAreScopedPerDocument(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := backend.Properties("doc-1").SetProperty(ctx, "publish", "true"); err != nil {
				t.Fatalf("SetProperty: %v", err)
			}
			if err := backend.Properties("doc-2").SetProperties(ctx, map[string]string{"x": "y"}, true); err != nil {
				t.Fatalf("SetProperties: %v", err)
			}

			got, ok, err := backend.Properties("doc-1").GetProperty(ctx, "publish")
			if err != nil || !ok || got != "true" {
				t.Errorf("doc-1 publish = %q, %v, %v; want true", got, ok, err)
			}
			if _, ok, _ := backend.Properties("doc-2").GetProperty(ctx, "publish"); ok {
				t.Error("doc-2 sees doc-1 property")
			}
		})
	}
}

func TestEmptyDocumentID(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := backend.Properties("").SetProperty(ctx, "a", "b")
			if !errors.Is(err, ErrEmptyDocumentID) {
				t.Errorf("SetProperty with empty id err = %v, want ErrEmptyDocumentID", err)
			}
		})
	}
}

func TestDatabaseReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "autoslides.db")

	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	if err := db.Properties("doc-1").SetProperty(ctx, "initialized", "true"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	db.Close()

	db, err = NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("NewDatabase reopen: %v", err)
	}
	defer db.Close()

	got, ok, err := db.Properties("doc-1").GetProperty(ctx, "initialized")
	if err != nil || !ok || got != "true" {
		t.Errorf("initialized after reopen = %q, %v, %v; want true", got, ok, err)
	}
}

func TestNewDatabaseFailures(t *testing.T) {
	dir := t.TempDir()

	notADatabase := filepath.Join(dir, "notes.db")
	if err := os.WriteFile(notADatabase, bytes.Repeat([]byte("plain text, not sqlite\n"), 64), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"path is a directory", dir},
		{"file is not a database", notADatabase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewDatabase(tt.path)
			if err == nil {
				db.Close()
				t.Fatal("NewDatabase succeeded")
			}
			if db != nil {
				t.Errorf("NewDatabase returned %v alongside error %v", db, err)
			}
		})
	}
}

func TestS3ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "documents/abc.json"},
		{"autoslides", "autoslides/documents/abc.json"},
		{"autoslides/", "autoslides/documents/abc.json"},
	}
	for _, tt := range tests {
		b := &S3Backend{prefix: tt.prefix}
		if got := b.objectKey("abc"); got != tt.want {
			t.Errorf("objectKey with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no such key", fmt.Errorf("wrapped: %w", &s3types.NoSuchKey{}), true},
		{"generic not found", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound = %v, want %v", got, tt.want)
			}
		})
	}
}
