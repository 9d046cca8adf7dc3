package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const (
	categoryColumns   = `id, slug, position, translations, created_at, updated_at`
	technologyColumns = `id, category_id, name, icon, visible, position, created_at, updated_at`
)

// TechnologyRepository implements domain.TechnologyRepository.
type TechnologyRepository struct {
	conn database.Connection
}

// NewTechnologyRepository creates a technology repository over conn.
func NewTechnologyRepository(conn database.Connection) *TechnologyRepository {
	return &TechnologyRepository{conn: conn}
}

func (r *TechnologyRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *TechnologyRepository) SaveCategory(ctx context.Context, c *domain.TechnologyCategory) error {
	translations, err := encodeJSON(c.Translations())
	if err != nil {
		return err
	}
	_, err = r.exec(ctx).Exec(ctx, `
		INSERT INTO technology_categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			slug = excluded.slug,
			position = excluded.position,
			translations = excluded.translations,
			updated_at = excluded.updated_at`,
		c.ID().String(), c.Slug(), c.Position(), translations,
		database.FormatTime(c.CreatedAt()), database.FormatTime(c.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save technology category %s: %w", c.Slug(), err)
	}
	return nil
}

func (r *TechnologyRepository) Save(ctx context.Context, t *domain.Technology) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO technologies (`+technologyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			name = excluded.name,
			icon = excluded.icon,
			visible = excluded.visible,
			position = excluded.position,
			updated_at = excluded.updated_at`,
		t.ID().String(), t.CategoryID().String(), t.Name(), t.Icon(),
		database.Flag(t.IsVisible()), t.Position(),
		database.FormatTime(t.CreatedAt()), database.FormatTime(t.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save technology %s: %w", t.Name(), err)
	}
	return nil
}

func (r *TechnologyRepository) Categories(ctx context.Context) ([]*domain.TechnologyCategory, error) {
	rows, err := r.exec(ctx).Query(ctx,
		`SELECT `+categoryColumns+` FROM technology_categories ORDER BY position, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.TechnologyCategory
	for rows.Next() {
		var id, slug, translations, createdAt, updatedAt string
		var position int
		if err := rows.Scan(&id, &slug, &position, &translations, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		base, err := database.RehydrateBase(id, createdAt, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("technology category %s: %w", slug, err)
		}
		tr, err := decodeTranslations(translations)
		if err != nil {
			return nil, fmt.Errorf("technology category %s: %w", slug, err)
		}
		categories = append(categories, domain.RehydrateTechnologyCategory(base, slug, position, tr))
	}
	return categories, rows.Err()
}

func (r *TechnologyRepository) FindVisible(ctx context.Context) ([]*domain.Technology, error) {
	rows, err := r.exec(ctx).Query(ctx,
		`SELECT `+technologyColumns+` FROM technologies WHERE visible = 1 ORDER BY position, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var technologies []*domain.Technology
	for rows.Next() {
		var id, categoryID, name, icon, createdAt, updatedAt string
		var visible int64
		var position int
		if err := rows.Scan(&id, &categoryID, &name, &icon, &visible, &position, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		base, err := database.RehydrateBase(id, createdAt, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("technology %s: %w", name, err)
		}
		category, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, fmt.Errorf("technology %s category: %w", name, err)
		}
		technologies = append(technologies, domain.RehydrateTechnology(base, category, name, icon,
			database.Bool(visible), position))
	}
	return technologies, rows.Err()
}
