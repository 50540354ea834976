package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/model"
)

// In-memory fakes for the repository and blob store interfaces.
// Each stores copies so tests cannot mutate "persisted" state by accident.

var errStorage = errors.New("disk on fire")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock that starts at start and advances by step on
// every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

// ---- projects ----

type mockProjectRepo struct {
	projects  map[string]model.Project
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	deleted   []string
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, p *model.Project) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	return &p, nil
}

func (m *mockProjectRepo) List(_ context.Context) ([]model.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockProjectRepo) Update(_ context.Context, p *model.Project) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.projects[p.ID]; !ok {
		return apperror.NotFound("project", p.ID)
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	delete(m.projects, id)
	return nil
}

// ---- snippets ----

type mockSnippetRepo struct {
	snippets  map[string]model.Snippet
	createErr error
}

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{snippets: make(map[string]model.Snippet)}
}

func (m *mockSnippetRepo) Create(_ context.Context, s *model.Snippet) error {
	if m.createErr != nil {
		return m.createErr
	}
	stored := *s
	stored.Tags = append([]string{}, s.Tags...)
	m.snippets[s.ID] = stored
	return nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	s, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	return &s, nil
}

func (m *mockSnippetRepo) List(_ context.Context) ([]model.Snippet, error) {
	out := make([]model.Snippet, 0, len(m.snippets))
	for _, s := range m.snippets {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	delete(m.snippets, id)
	return nil
}

// ---- files ----

type mockFileRepo struct {
	files     map[string]model.FileRecord
	createErr error
	deleteErr error
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[string]model.FileRecord)}
}

func (m *mockFileRepo) Create(_ context.Context, f *model.FileRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.files[f.ID] = *f
	return nil
}

func (m *mockFileRepo) GetByID(_ context.Context, id string) (*model.FileRecord, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, apperror.NotFound("file", id)
	}
	return &f, nil
}

func (m *mockFileRepo) List(_ context.Context) ([]model.FileRecord, error) {
	out := make([]model.FileRecord, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFileRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.files[id]; !ok {
		return apperror.NotFound("file", id)
	}
	delete(m.files, id)
	return nil
}

// fakeBlobs is an in-memory blobstore.Store.
type fakeBlobs struct {
	blobs     map[string][]byte
	nextID    int
	putErr    error
	getErr    error
	deleteErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: make(map[string][]byte)}
}

func (f *fakeBlobs) Put(data []byte) (string, string, error) {
	if f.putErr != nil {
		return "", "", f.putErr
	}
	f.nextID++
	id := fmt.Sprintf("blob-%d", f.nextID)
	path := "mem/" + id
	f.blobs[path] = append([]byte{}, data...)
	return id, path, nil
}

func (f *fakeBlobs) Get(path string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.blobs[path]
	if !ok {
		return nil, fmt.Errorf("fake: %s: no such blob", path)
	}
	return data, nil
}

func (f *fakeBlobs) Delete(path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.blobs[path]; !ok {
		return fmt.Errorf("fake: %s: no such blob", path)
	}
	delete(f.blobs, path)
	return nil
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
