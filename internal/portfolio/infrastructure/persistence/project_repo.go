package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const projectColumns = `id, slug, url, image_id, technologies, featured, visible, position,
	translations, created_at, updated_at`

// ProjectRepository implements domain.ProjectRepository.
type ProjectRepository struct {
	conn database.Connection
}

// NewProjectRepository creates a project repository over conn.
func NewProjectRepository(conn database.Connection) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project) error {
	technologies, err := encodeJSON(p.Technologies())
	if err != nil {
		return err
	}
	translations, err := encodeJSON(p.Translations())
	if err != nil {
		return err
	}

	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			slug = excluded.slug,
			url = excluded.url,
			image_id = excluded.image_id,
			technologies = excluded.technologies,
			featured = excluded.featured,
			visible = excluded.visible,
			position = excluded.position,
			translations = excluded.translations,
			updated_at = excluded.updated_at`,
		p.ID().String(), p.Slug(), p.URL(), nullInt(p.ImageID()), technologies,
		database.Flag(p.IsFeatured()), database.Flag(p.IsVisible()), p.Position(), translations,
		database.FormatTime(p.CreatedAt()), database.FormatTime(p.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.Slug(), err)
	}
	return nil
}

func (r *ProjectRepository) FindVisible(ctx context.Context) ([]*domain.Project, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE visible = 1 ORDER BY position, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var id, slug, url, technologies, translations, createdAt, updatedAt string
		var imageID sql.NullInt64
		var featured, visible int64
		var position int
		if err := rows.Scan(&id, &slug, &url, &imageID, &technologies, &featured, &visible,
			&position, &translations, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		base, err := database.RehydrateBase(id, createdAt, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", slug, err)
		}
		var techs []string
		if err := json.Unmarshal([]byte(technologies), &techs); err != nil {
			return nil, fmt.Errorf("project %s technologies: %w", slug, err)
		}
		tr, err := decodeTranslations(translations)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", slug, err)
		}

		projects = append(projects, domain.RehydrateProject(base, slug, url, intPtr(imageID), techs,
			database.Bool(featured), database.Bool(visible), position, tr))
	}
	return projects, rows.Err()
}
