package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpload(t *testing.T) {
	var gotKey, gotSecret, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("pinata_api_key")
		gotSecret = r.Header.Get("pinata_secret_api_key")

		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		b, _ := io.ReadAll(file)
		gotFile = string(b)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"IpfsHash":"QmTestHash"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-1", "secret-1")
	hash, err := c.Upload(context.Background(), "cover.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if hash != "QmTestHash" {
		t.Fatalf("hash = %q, want QmTestHash", hash)
	}
	if gotKey != "key-1" || gotSecret != "secret-1" {
		t.Fatalf("credentials not sent: key=%q secret=%q", gotKey, gotSecret)
	}
	if gotFile != "png-bytes" {
		t.Fatalf("file body = %q", gotFile)
	}
}

func TestUploadServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "s")
	if _, err := c.Upload(context.Background(), "f", strings.NewReader("x")); !errors.Is(err, ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
}

func TestUploadEmptyHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "s")
	if _, err := c.Upload(context.Background(), "f", strings.NewReader("x")); !errors.Is(err, ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
}
