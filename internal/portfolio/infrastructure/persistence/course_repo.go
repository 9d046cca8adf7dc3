package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const courseColumns = `id, institution, url, completed_on, visible, position, translations,
	created_at, updated_at`

// CourseRepository implements domain.CourseRepository.
type CourseRepository struct {
	conn database.Connection
}

// NewCourseRepository creates a course repository over conn.
func NewCourseRepository(conn database.Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

func (r *CourseRepository) Save(ctx context.Context, c *domain.Course) error {
	translations, err := encodeJSON(c.Translations())
	if err != nil {
		return err
	}

	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			institution = excluded.institution,
			url = excluded.url,
			completed_on = excluded.completed_on,
			visible = excluded.visible,
			position = excluded.position,
			translations = excluded.translations,
			updated_at = excluded.updated_at`,
		c.ID().String(), c.Institution(), c.URL(), nullDate(c.CompletedOn()),
		database.Flag(c.IsVisible()), c.Position(), translations,
		database.FormatTime(c.CreatedAt()), database.FormatTime(c.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save course %s: %w", c.ID(), err)
	}
	return nil
}

// FindVisible orders by position, then by completion date with the most
// recent first. Dates are stored as ISO text so they sort as strings.
func (r *CourseRepository) FindVisible(ctx context.Context) ([]*domain.Course, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE visible = 1
		ORDER BY position, COALESCE(completed_on, '') DESC, institution`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		var id, institution, url, translations, createdAt, updatedAt string
		var completedOn sql.NullString
		var visible int64
		var position int
		if err := rows.Scan(&id, &institution, &url, &completedOn, &visible, &position,
			&translations, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		base, err := database.RehydrateBase(id, createdAt, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", id, err)
		}
		completed, err := parseDate(completedOn)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", id, err)
		}
		tr, err := decodeTranslations(translations)
		if err != nil {
			return nil, fmt.Errorf("course %s: %w", id, err)
		}

		courses = append(courses, domain.RehydrateCourse(base, institution, url, completed,
			database.Bool(visible), position, tr))
	}
	return courses, rows.Err()
}
