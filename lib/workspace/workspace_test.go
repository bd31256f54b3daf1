package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bloomberg/go-testgroup"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/ranking"
	"github.com/pescuma/thanks/lib/repos/repotest"
	"github.com/pescuma/thanks/lib/storages"
)

type testRepo struct {
	dir     string
	builder *repotest.Builder
	head    plumbing.Hash
}

func newTestRepo(t *testgroup.T) *testRepo {
	dir := filepath.Join(t.TempDir(), "repo.git")

	b := repotest.NewDiskBuilder(t.T, dir)
	b.File(".mailmap", "Bob Jones <bob@example.com> <bobby@old.example.com>\n")

	c1 := b.Commit("Alice", "alice@example.com")
	c2 := b.Commit("Bobby", "bobby@old.example.com", c1)
	c3 := b.Commit("Bob Jones", "bob@example.com", c2)
	c4 := b.Commit("Carol", "carol@example.com", c3)
	c5 := b.Commit("Alice", "alice@example.com", c4)

	b.Tag("1.0", c2).AnnotatedTag("2.0", c4).Tag("nightly", c5).Branch("master", c5)

	return &testRepo{dir: dir, builder: b, head: c5}
}

func newTestWorkspace(t *testgroup.T) *Workspace {
	ws, err := NewWorkspace(filepath.Join(t.TempDir(), "thanks.sqlite"), consoles.NewDiscardConsole())
	t.Require.NoError(err)
	t.Cleanup(func() { _ = ws.Close() })

	return ws
}

func newUpdatedWorkspace(t *testgroup.T) (*Workspace, *testRepo) {
	ws := newTestWorkspace(t)
	repo := newTestRepo(t)

	_, err := ws.AddProject(&ProjectOptions{Name: "proj", RepoDir: repo.dir})
	t.Require.NoError(err)

	t.Require.NoError(ws.Update(&UpdateOptions{LinkTemplate: "https://example.com/{version}"}))

	return ws, repo
}

func TestWorkspace(t *testing.T) {
	testgroup.RunInParallel(t, &WorkspaceTests{})
}

type WorkspaceTests struct {
}

func (g *WorkspaceTests) InMemory(t *testgroup.T) {
	ws, err := NewWorkspace(":memory:", consoles.NewDiscardConsole())
	t.Require.NoError(err)
	defer ws.Close()

	projs, err := ws.ListProjects()
	t.Require.NoError(err)
	t.Empty(projs)
}

func (g *WorkspaceTests) UnknownLocation(t *testgroup.T) {
	_, err := NewWorkspace("ftp://nope", consoles.NewDiscardConsole())
	t.Require.Error(err)
}

func (g *WorkspaceTests) Update(t *testgroup.T) {
	ws, _ := newUpdatedWorkspace(t)
	r := ws.Reporter()

	rels, err := r.Releases("proj")
	t.Require.NoError(err)
	t.Equal([]string{model.UnreleasedVersion, "2.0", "1.0"}, lo.Map(rels, func(r *model.Release, _ int) string { return r.Version }))

	c, err := r.Release("proj", "1.0")
	t.Require.NoError(err)
	t.Equal([]string{"Alice", "Bob Jones"}, c.Names)
	t.Equal("https://example.com/1.0", c.Link)

	c, err = r.Release("proj", "2.0")
	t.Require.NoError(err)
	t.Equal([]string{"Bob Jones", "Carol"}, c.Names)

	c, err = r.Release("proj", model.UnreleasedVersion)
	t.Require.NoError(err)
	t.Equal([]string{"Alice"}, c.Names)

	c, err = r.AllTime("proj")
	t.Require.NoError(err)
	t.Equal(3, c.Contributors)
	t.Equal(5, c.Commits)

	entries, err := r.Leaderboard("proj", "")
	t.Require.NoError(err)
	t.Equal([]*ranking.Entry{
		{Rank: 1, Author: "Alice", Commits: 2},
		{Rank: 1, Author: "Bob Jones", Commits: 2},
		{Rank: 3, Author: "Carol", Commits: 1},
	}, entries)
}

func (g *WorkspaceTests) UpdateIsIdempotent(t *testgroup.T) {
	ws, _ := newUpdatedWorkspace(t)

	t.Require.NoError(ws.Update(nil))

	c, err := ws.Reporter().AllTime("proj")
	t.Require.NoError(err)
	t.Equal(3, c.Contributors)
	t.Equal(5, c.Commits)
}

func (g *WorkspaceTests) UpdateKeepsHiddenReleases(t *testgroup.T) {
	ws, _ := newUpdatedWorkspace(t)

	t.Require.NoError(ws.SetReleaseVisibility("proj", "2.0", false))
	t.Require.NoError(ws.Update(nil))

	_, err := ws.Reporter().Release("proj", "2.0")
	t.True(errors.Is(err, storages.ErrNotFound))

	c, err := ws.Reporter().AllTime("proj")
	t.Require.NoError(err)
	t.Equal(3, c.Commits)
}

func (g *WorkspaceTests) UnknownProjectFailsUpdate(t *testgroup.T) {
	ws := newTestWorkspace(t)

	err := ws.Update(&UpdateOptions{Projects: []string{"nope"}})
	t.True(errors.Is(err, storages.ErrNotFound))
}

func (g *WorkspaceTests) BrokenProjectDoesNotStopOthers(t *testgroup.T) {
	ws := newTestWorkspace(t)
	repo := newTestRepo(t)

	_, err := ws.AddProject(&ProjectOptions{Name: "broken", RepoDir: filepath.Join(t.TempDir(), "missing")})
	t.Require.NoError(err)
	_, err = ws.AddProject(&ProjectOptions{Name: "proj", RepoDir: repo.dir})
	t.Require.NoError(err)

	err = ws.Update(&UpdateOptions{Parallelism: 2})

	var updateErr *UpdateError
	t.Require.True(errors.As(err, &updateErr))
	t.Equal([]string{"broken"}, lo.Keys(updateErr.Failed))

	c, err := ws.Reporter().AllTime("proj")
	t.Require.NoError(err)
	t.Equal(5, c.Commits)
}

func (g *WorkspaceTests) MailmapOverride(t *testgroup.T) {
	ws := newTestWorkspace(t)
	repo := newTestRepo(t)

	file := filepath.Join(t.TempDir(), "mailmap")
	t.Require.NoError(os.WriteFile(file, []byte("Carol C. <carol@example.com>\n"), 0o600))

	_, err := ws.AddProject(&ProjectOptions{Name: "proj", RepoDir: repo.dir})
	t.Require.NoError(err)
	t.Require.NoError(ws.Update(&UpdateOptions{MailmapFile: file}))

	c, err := ws.Reporter().AllTime("proj")
	t.Require.NoError(err)
	t.Equal([]string{"Alice", "Bob Jones", "Bobby", "Carol C."}, c.Names)
}

func (g *WorkspaceTests) AddRelease(t *testgroup.T) {
	ws, repo := newUpdatedWorkspace(t)

	c6 := repo.builder.Commit("Dave", "dave@example.com", repo.head)
	c7 := repo.builder.Commit("Erin", "erin@example.com", c6)
	repo.builder.Branch("master", c7)

	rel, count, err := ws.AddRelease(&ReleaseOptions{Project: "proj", Version: "3.0", Ref: c6.String()})
	t.Require.NoError(err)
	t.Equal(2, count)
	t.Equal("2.0", rel.Previous)

	r := ws.Reporter()

	c, err := r.Release("proj", "3.0")
	t.Require.NoError(err)
	t.Equal([]string{"Alice", "Dave"}, c.Names)

	c, err = r.Release("proj", model.UnreleasedVersion)
	t.Require.NoError(err)
	t.Equal([]string{"Erin"}, c.Names)

	rels, err := r.Releases("proj")
	t.Require.NoError(err)
	t.Equal([]string{model.UnreleasedVersion, "3.0", "2.0", "1.0"}, lo.Map(rels, func(r *model.Release, _ int) string { return r.Version }))
}

func (g *WorkspaceTests) PatchReleasesOnMaintenanceBranch(t *testgroup.T) {
	ws := newTestWorkspace(t)

	dir := filepath.Join(t.TempDir(), "repo.git")
	b := repotest.NewDiskBuilder(t.T, dir)
	c1 := b.Commit("Alice", "alice@example.com")
	fix := b.Commit("Patcher", "patcher@example.com", c1)
	minor := b.Commit("Minor", "minor@example.com", c1)
	next := b.Commit("Nora", "nora@example.com", minor)
	b.Tag("1.0.0", c1).Tag("1.0.1", fix).Tag("1.1.0", minor).Branch("master", next)

	_, err := ws.AddProject(&ProjectOptions{Name: "proj", RepoDir: dir})
	t.Require.NoError(err)
	t.Require.NoError(ws.Update(nil))

	names := func(version string) []string {
		c, err := ws.Reporter().Release("proj", version)
		t.Require.NoError(err)
		return c.Names
	}

	t.Equal([]string{"Alice"}, names("1.0.0"))
	t.Equal([]string{"Patcher"}, names("1.0.1"))
	t.Equal([]string{"Minor"}, names("1.1.0"))
	t.Equal([]string{"Nora"}, names(model.UnreleasedVersion))

	fix2 := b.Commit("Fixer", "fixer@example.com", fix)

	rel, count, err := ws.AddRelease(&ReleaseOptions{Project: "proj", Version: "1.0.2", Ref: fix2.String()})
	t.Require.NoError(err)
	t.Equal(1, count)
	t.Equal("1.0.1", rel.Previous)

	t.Equal([]string{"Fixer"}, names("1.0.2"))
	t.Equal([]string{"Patcher"}, names("1.0.1"))
	t.Equal([]string{"Nora"}, names(model.UnreleasedVersion))

	rels, err := ws.ListReleases("proj")
	t.Require.NoError(err)
	master, ok := lo.Find(rels, func(r *model.Release) bool { return r.IsUnreleased() })
	t.Require.True(ok)
	t.Equal("1.1.0", master.Previous)
}

func (g *WorkspaceTests) AddExistingRelease(t *testgroup.T) {
	ws, _ := newUpdatedWorkspace(t)

	_, _, err := ws.AddRelease(&ReleaseOptions{Project: "proj", Version: "2.0"})
	t.Require.Error(err)

	_, _, err = ws.AddRelease(&ReleaseOptions{Project: "proj", Version: model.UnreleasedVersion})
	t.Require.Error(err)
}

func (g *WorkspaceTests) OptOut(t *testgroup.T) {
	ws, _ := newUpdatedWorkspace(t)

	count, err := ws.SetAuthorVisibility("Carol@Example.com", false)
	t.Require.NoError(err)
	t.Equal(1, count)

	c, err := ws.Reporter().AllTime("proj")
	t.Require.NoError(err)
	t.Equal([]string{"Alice", "Bob Jones"}, c.Names)

	_, err = ws.SetAuthorVisibility("carol@example.com", true)
	t.Require.NoError(err)

	c, err = ws.Reporter().AllTime("proj")
	t.Require.NoError(err)
	t.Equal(3, c.Contributors)

	_, err = ws.SetAuthorVisibility("nobody@example.com", false)
	t.True(errors.Is(err, storages.ErrNotFound))
}

func (g *WorkspaceTests) Projects(t *testgroup.T) {
	ws := newTestWorkspace(t)

	p, err := ws.AddProject(&ProjectOptions{Name: "proj", RepoDir: "/tmp/x"})
	t.Require.NoError(err)
	t.Equal("proj", p.URLPath)

	_, err = ws.AddProject(&ProjectOptions{Name: "proj", RepoDir: "/tmp/x"})
	t.Require.Error(err)

	_, err = ws.AddProject(&ProjectOptions{RepoDir: "/tmp/x"})
	t.Require.Error(err)

	t.Require.NoError(ws.RemoveProject("proj"))

	projs, err := ws.ListProjects()
	t.Require.NoError(err)
	t.Empty(projs)

	t.True(errors.Is(ws.RemoveProject("proj"), storages.ErrNotFound))
}

func (g *WorkspaceTests) Maintenance(t *testgroup.T) {
	ws := newTestWorkspace(t)

	on, err := ws.Maintenance()
	t.Require.NoError(err)
	t.False(on)

	t.Require.NoError(ws.SetMaintenance(true))
	on, err = ws.Maintenance()
	t.Require.NoError(err)
	t.True(on)

	t.Require.NoError(ws.SetMaintenance(false))
	on, err = ws.Maintenance()
	t.Require.NoError(err)
	t.False(on)
}

func (g *WorkspaceTests) Purge(t *testgroup.T) {
	ws, _ := newUpdatedWorkspace(t)

	t.Require.NoError(ws.Purge())

	projs, err := ws.ListProjects()
	t.Require.NoError(err)
	t.Empty(projs)
}

func (g *WorkspaceTests) Scores(t *testgroup.T) {
	ws := newTestWorkspace(t)
	repo := newTestRepo(t)

	entries, err := ws.Scores(repo.dir, "")
	t.Require.NoError(err)

	t.Equal([]string{"Alice", "Bob Jones", "Carol"}, lo.Map(entries, func(e *ranking.Entry, _ int) string { return e.Author }))
	t.Equal([]int{1, 1, 3}, lo.Map(entries, func(e *ranking.Entry, _ int) int { return e.Rank }))
}
