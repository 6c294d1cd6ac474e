package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	_ Store = (*Local)(nil)
	_ Store = (*S3)(nil)
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"posts/2026/01/a.jpg", "posts/2026/01/a.jpg", true},
		{"/posts/a.jpg", "posts/a.jpg", true},
		{"", "", false},
		{"../etc/passwd", "", false},
		{"posts/../../x", "", false},
		{"posts//a.jpg", "", false},
	}
	for _, tt := range tests {
		got, err := cleanKey(tt.key)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("cleanKey(%q) = %q, %v", tt.key, got, err)
		}
	}
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "media")
	l, err := NewLocal(root, "/media/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	key := "posts/2026/01/cover.png"
	if ok, err := l.Exists(ctx, key); err != nil || ok {
		t.Fatalf("Exists before save = %v, %v", ok, err)
	}
	if err := l.Save(ctx, key, "image/png", strings.NewReader("png-bytes"), 9); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "posts", "2026", "01", "cover.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("stored file = %q, %v", data, err)
	}
	if ok, err := l.Exists(ctx, key); err != nil || !ok {
		t.Fatalf("Exists after save = %v, %v", ok, err)
	}
	if got := l.URL(key); got != "/media/posts/2026/01/cover.png" {
		t.Errorf("URL = %q", got)
	}

	if err := l.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := l.Delete(ctx, key); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
	if ok, _ := l.Exists(ctx, key); ok {
		t.Error("file should be gone")
	}

	if err := l.Save(ctx, "../escape.txt", "text/plain", strings.NewReader("x"), 1); err == nil {
		t.Error("expected error for escaping key")
	}
}

// fakeS3 is a minimal path-style object store.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	acl     map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.acl[r.URL.Path] = r.Header.Get("X-Amz-Acl")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3RoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, acl: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c, err := NewS3(srv.URL, "us-east-1", "key", "secret", "media", "")
	if err != nil || c == nil {
		t.Fatalf("NewS3: %v, %v", c, err)
	}
	ctx := context.Background()
	key := "posts/2026/01/a.jpg"

	if err := c.Save(ctx, key, "image/jpeg", bytes.NewReader([]byte("jpeg")), 4); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := string(fake.objects["/media/"+key]); got != "jpeg" {
		t.Errorf("stored object = %q", got)
	}
	if acl := fake.acl["/media/"+key]; acl != "public-read" {
		t.Errorf("acl = %q, want public-read", acl)
	}

	ok, err := c.Exists(ctx, key)
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = c.Exists(ctx, "posts/missing.jpg")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := fake.objects["/media/"+key]; ok {
		t.Error("object should be deleted")
	}

	if got := c.URL(key); got != srv.URL+"/media/"+key {
		t.Errorf("URL = %q", got)
	}
}

func TestNewS3Unconfigured(t *testing.T) {
	c, err := NewS3("", "", "", "", "", "")
	if c != nil || err != nil {
		t.Errorf("NewS3 without endpoint = %v, %v", c, err)
	}
	if _, err := NewS3("http://x", "r", "k", "s", "", ""); err == nil {
		t.Error("expected error for missing bucket")
	}

	c, _ = NewS3("http://s3.local/", "r", "k", "s", "media", "https://cdn.example.com/")
	if got := c.URL("a.jpg"); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("URL with public URL = %q", got)
	}
}
