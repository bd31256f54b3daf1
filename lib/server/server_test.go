package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bloomberg/go-testgroup"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/storages"
	"github.com/pescuma/thanks/lib/storages/orm"
)

func newTestServer(t *testgroup.T) (*server, storages.Storage) {
	s, err := orm.NewGormStorage(orm.WithSqlite(filepath.Join(t.TempDir(), "thanks.sqlite")), consoles.NewDiscardConsole())
	t.Require.NoError(err)
	t.Cleanup(func() { _ = s.Close() })

	proj := &model.Project{Name: "My Project", URLPath: "my-project"}
	t.Require.NoError(s.CreateProject(proj))

	r1, err := s.GetOrCreateRelease(&model.Release{ProjectID: proj.ID, Version: "1.0", Position: 0, Visible: true, Link: "https://example.com/1.0"})
	t.Require.NoError(err)
	r2, err := s.GetOrCreateRelease(&model.Release{ProjectID: proj.ID, Version: model.UnreleasedVersion, Previous: "1.0", Position: 1, Visible: true})
	t.Require.NoError(err)

	ids := []model.Identity{model.NewIdentity("Alice", "alice@example.com"), model.NewIdentity("Bob", "bob@example.com")}
	t.Require.NoError(s.CreateAuthorsIfAbsent(ids))
	authors, err := s.FindAuthors(ids)
	t.Require.NoError(err)

	byName := map[string]model.ID{}
	for _, a := range authors {
		byName[a.Name] = a.ID
	}

	t.Require.NoError(s.UpsertCommits([]*model.Commit{
		{Sha: "1", ReleaseID: r1.ID, AuthorID: byName["Alice"]},
		{Sha: "2", ReleaseID: r1.ID, AuthorID: byName["Bob"]},
		{Sha: "3", ReleaseID: r2.ID, AuthorID: byName["Bob"]},
	}))

	return newServer(consoles.NewDiscardConsole(), s, nil), s
}

func request(t *testgroup.T, s *server, path string) (int, map[string]any) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)

	s.router().ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		t.Require.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	}

	return w.Code, body
}

func TestServer(t *testing.T) {
	testgroup.RunInParallel(t, &ServerTests{})
}

type ServerTests struct {
}

func (g *ServerTests) ListProjects(t *testgroup.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	t.Equal(http.StatusOK, w.Code)

	var body []map[string]any
	t.Require.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	t.Require.Len(body, 1)
	t.Equal("my-project", body[0]["urlPath"])
}

func (g *ServerTests) Project(t *testgroup.T) {
	s, _ := newTestServer(t)

	code, body := request(t, s, "/api/projects/my-project")

	t.Equal(http.StatusOK, code)
	t.Equal("My Project", body["name"])
	t.Len(body["releases"], 2)
}

func (g *ServerTests) Release(t *testgroup.T) {
	s, _ := newTestServer(t)

	code, body := request(t, s, "/api/projects/my-project/releases/1.0")

	t.Equal(http.StatusOK, code)
	t.Equal([]any{"Alice", "Bob"}, body["names"])
	t.Equal(float64(2), body["commits"])
	t.Equal("https://example.com/1.0", body["link"])
}

func (g *ServerTests) AllTime(t *testgroup.T) {
	s, _ := newTestServer(t)

	code, body := request(t, s, "/api/projects/my-project/all-time")

	t.Equal(http.StatusOK, code)
	t.Equal(float64(2), body["contributors"])
	t.Equal(float64(3), body["commits"])
}

func (g *ServerTests) Leaderboard(t *testgroup.T) {
	s, _ := newTestServer(t)

	code, body := request(t, s, "/api/projects/my-project/leaderboard?limit=1")

	t.Equal(http.StatusOK, code)
	t.Equal(float64(2), body["total"])
	t.Equal([]any{map[string]any{"rank": float64(1), "author": "Bob", "commits": float64(2)}}, body["data"])

	code, body = request(t, s, "/api/projects/my-project/leaderboard?release=1.0")

	t.Equal(http.StatusOK, code)
	t.Len(body["data"], 2)
}

func (g *ServerTests) InvalidPagination(t *testgroup.T) {
	s, _ := newTestServer(t)

	code, _ := request(t, s, "/api/projects/my-project/leaderboard?offset=-1")
	t.Equal(http.StatusBadRequest, code)

	code, body := request(t, s, "/api/projects/my-project/leaderboard?offset=5")
	t.Equal(http.StatusOK, code)
	t.Empty(body["data"])
}

func (g *ServerTests) NotFound(t *testgroup.T) {
	s, _ := newTestServer(t)

	code, _ := request(t, s, "/api/projects/nope")
	t.Equal(http.StatusNotFound, code)

	code, _ = request(t, s, "/api/projects/my-project/releases/9.9")
	t.Equal(http.StatusNotFound, code)
}

func (g *ServerTests) Maintenance(t *testgroup.T) {
	s, storage := newTestServer(t)

	t.Require.NoError(storage.WriteConfig(storages.ConfigMaintenance, "true"))

	code, body := request(t, s, "/api/projects/my-project")
	t.Equal(http.StatusServiceUnavailable, code)
	t.Equal(true, body["maintenance"])

	t.Require.NoError(storage.WriteConfig(storages.ConfigMaintenance, "false"))

	code, _ = request(t, s, "/api/projects/my-project")
	t.Equal(http.StatusOK, code)
}
