package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.xml")
	if err := os.WriteFile(path, []byte("<Edmx/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := New().FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if got != "<Edmx/>" {
		t.Errorf("got %q", got)
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := New().FromFile(filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<Edmx/>"))
	}))
	defer srv.Close()

	got, err := New().FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if got != "<Edmx/>" {
		t.Errorf("got %q", got)
	}
}

func TestFromURL_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New().FromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestAcquire_Dispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("from-url"))
	}))
	defer srv.Close()

	f := New()
	ctx := context.Background()

	if got, err := f.Acquire(ctx, srv.URL); err != nil || got != "from-url" {
		t.Errorf("url acquire = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "m.xml")
	os.WriteFile(path, []byte("from-file"), 0o644)
	if got, err := f.Acquire(ctx, path); err != nil || got != "from-file" {
		t.Errorf("file acquire = %q, %v", got, err)
	}
}

func TestFromReader(t *testing.T) {
	got, err := New().FromReader(strings.NewReader("piped"))
	if err != nil || got != "piped" {
		t.Errorf("got %q, %v", got, err)
	}
}
