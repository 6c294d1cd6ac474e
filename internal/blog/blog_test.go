package blog_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"blogpress/internal/blog"
	"blogpress/internal/models"
	"blogpress/internal/store/memory"
)

// memFiles is a FileStore kept in a map.
type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string][]byte)}
}

func (m *memFiles) Save(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return nil
}

func (m *memFiles) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[key]
	return ok, nil
}

func (m *memFiles) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memFiles) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type fixture struct {
	svc   *blog.Service
	db    *memory.DB
	files *memFiles
	alice *blog.Caller
	bob   *blog.Caller
	staff *blog.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	files := newMemFiles()
	svc := blog.NewService(blog.Deps{
		Posts:      db.Posts(),
		Categories: db.Categories(),
		Tags:       db.Tags(),
		Comments:   db.Comments(),
		Users:      db.Users(),
		Files:      files,
		PerPage:    2,
	})
	f := &fixture{svc: svc, db: db, files: files}
	f.alice = f.user(t, "alice", false)
	f.bob = f.user(t, "bob", false)
	f.staff = f.user(t, "editor", true)
	return f
}

func (f *fixture) user(t *testing.T, name string, staff bool) *blog.Caller {
	t.Helper()
	u, err := f.svc.RegisterUser(context.Background(), blog.UserInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "correct horse",
		IsStaff:  staff,
	})
	require.NoError(t, err)
	return &blog.Caller{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

func (f *fixture) post(t *testing.T, caller *blog.Caller, title string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := f.svc.CreatePost(context.Background(), caller, blog.PostInput{
		Title:   title,
		Content: "Body of " + title,
		Status:  string(status),
	}, nil)
	require.NoError(t, err)
	return p
}

func pngUpload(t *testing.T, w, h int) *blog.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &blog.Upload{Filename: "cover.png", Data: buf.Bytes()}
}
