// Package persistence stores pages and sections through the shared database
// layer. Queries use "?" placeholders and run unchanged on SQLite and Postgres.
package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/content/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const pageColumns = `id, slug, title, locale, published, created_at, updated_at`

// PageRepository implements domain.PageRepository.
type PageRepository struct {
	conn database.Connection
}

// NewPageRepository creates a page repository over conn.
func NewPageRepository(conn database.Connection) *PageRepository {
	return &PageRepository{conn: conn}
}

func (r *PageRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Save inserts the page or updates it in place.
func (r *PageRepository) Save(ctx context.Context, p *domain.Page) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			locale = excluded.locale,
			published = excluded.published,
			updated_at = excluded.updated_at`,
		p.ID().String(), p.Slug(), p.Title(), p.Locale(), database.Flag(p.IsPublished()),
		database.FormatTime(p.CreatedAt()), database.FormatTime(p.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save page %s: %w", p.Slug(), err)
	}
	return nil
}

func (r *PageRepository) FindBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	row := r.exec(ctx).QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

func (r *PageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	row := r.exec(ctx).QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id.String())
	return scanPage(row)
}

// List returns every page ordered by slug.
func (r *PageRepository) List(ctx context.Context) ([]*domain.Page, error) {
	rows, err := r.exec(ctx).Query(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func scanPage(row database.Row) (*domain.Page, error) {
	var id, slug, title, locale, createdAt, updatedAt string
	var published int64
	if err := row.Scan(&id, &slug, &title, &locale, &published, &createdAt, &updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrPageNotFound
		}
		return nil, err
	}

	base, err := database.RehydrateBase(id, createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", slug, err)
	}
	return domain.RehydratePage(base, slug, title, locale, database.Bool(published)), nil
}
