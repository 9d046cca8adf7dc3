package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/migrations"
)

func setupDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func savePage(t *testing.T, repo *PageRepository, slug string) *domain.Page {
	t.Helper()
	p, err := domain.NewPage(slug, "Title of "+slug, "en")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestPageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPageRepository(setupDB(t))

	home := savePage(t, repo, "home")
	savePage(t, repo, "about")

	found, err := repo.FindBySlug(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, home.ID(), found.ID())
	assert.Equal(t, "Title of home", found.Title())
	assert.False(t, found.IsPublished())
	assert.WithinDuration(t, home.CreatedAt(), found.CreatedAt(), time.Microsecond)

	home.Publish()
	require.NoError(t, home.Rename("Welcome"))
	require.NoError(t, repo.Save(ctx, home))

	found, err = repo.FindByID(ctx, home.ID())
	require.NoError(t, err)
	assert.True(t, found.IsPublished())
	assert.Equal(t, "Welcome", found.Title())

	pages, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "about", pages[0].Slug())

	_, err = repo.FindBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestPageRepository_DuplicateSlug(t *testing.T) {
	repo := NewPageRepository(setupDB(t))
	savePage(t, repo, "home")

	dup, err := domain.NewPage("home", "Other", "en")
	require.NoError(t, err)
	assert.Error(t, repo.Save(context.Background(), dup))
}

func TestSectionRepository(t *testing.T) {
	ctx := context.Background()
	conn := setupDB(t)
	pages := NewPageRepository(conn)
	repo := NewSectionRepository(conn)
	page := savePage(t, pages, "home")

	main1, err := section.NewSection(page.ID(), "rich_text_block", "main", 1)
	require.NoError(t, err)
	main0, err := section.NewSection(page.ID(), "project_highlight_list", "main", 0)
	require.NoError(t, err)
	hero, err := section.NewSection(page.ID(), "hero_primary", "hero", 0)
	require.NoError(t, err)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, hero.SetVisibility(&from, nil))
	hero.SetData(section.Data{"title": "Hello", "image": 4, "tags": []any{"a"}})
	hero.SetAnchor("#top")
	hero.SetLocale("nl")
	main1.Deactivate()

	for _, s := range []*section.Section{main1, main0, hero} {
		require.NoError(t, repo.Save(ctx, s))
	}

	found, err := repo.FindByPage(ctx, page.ID())
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, hero.ID(), found[0].ID(), "ordered by slot then position")
	assert.Equal(t, main0.ID(), found[1].ID())
	assert.Equal(t, main1.ID(), found[2].ID())

	got := found[0]
	assert.Equal(t, "top", got.Anchor())
	assert.Equal(t, "nl", got.Locale())
	assert.Equal(t, section.Data{"title": "Hello", "image": float64(4), "tags": []any{"a"}}, got.Data())
	require.NotNil(t, got.VisibleFrom())
	assert.True(t, from.Equal(*got.VisibleFrom()))
	assert.Nil(t, got.VisibleUntil())
	assert.False(t, found[2].IsActive())

	require.NoError(t, main0.Place("project_highlight_list", "main", 5))
	require.NoError(t, repo.Save(ctx, main0))
	reloaded, err := repo.FindByID(ctx, main0.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Position())

	require.NoError(t, repo.Delete(ctx, main0.ID()))
	assert.ErrorIs(t, repo.Delete(ctx, main0.ID()), section.ErrSectionNotFound)
	_, err = repo.FindByID(ctx, main0.ID())
	assert.ErrorIs(t, err, section.ErrSectionNotFound)
}

func TestSectionRepository_RequiresPage(t *testing.T) {
	repo := NewSectionRepository(setupDB(t))
	s, err := section.NewSection(uuid.New(), "hero_primary", "hero", 0)
	require.NoError(t, err)
	assert.Error(t, repo.Save(context.Background(), s), "foreign key to pages")
}
