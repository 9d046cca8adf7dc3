package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/folio/internal/content/section"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const sectionColumns = `id, page_id, template_key, slot, position, anchor, data, active,
	visible_from, visible_until, locale, created_at, updated_at`

// SectionRepository implements section.Repository. Section data is stored as
// a JSON document, so numbers come back as float64.
type SectionRepository struct {
	conn database.Connection
}

// NewSectionRepository creates a section repository over conn.
func NewSectionRepository(conn database.Connection) *SectionRepository {
	return &SectionRepository{conn: conn}
}

func (r *SectionRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SectionRepository) Save(ctx context.Context, s *section.Section) error {
	data, err := json.Marshal(s.Data())
	if err != nil {
		return fmt.Errorf("encode section %s data: %w", s.ID(), err)
	}

	_, err = r.exec(ctx).Exec(ctx, `
		INSERT INTO sections (`+sectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			template_key = excluded.template_key,
			slot = excluded.slot,
			position = excluded.position,
			anchor = excluded.anchor,
			data = excluded.data,
			active = excluded.active,
			visible_from = excluded.visible_from,
			visible_until = excluded.visible_until,
			locale = excluded.locale,
			updated_at = excluded.updated_at`,
		s.ID().String(), s.PageID().String(), s.TemplateKey(), s.Slot(), s.Position(), s.Anchor(),
		string(data), database.Flag(s.IsActive()),
		database.NullTime(s.VisibleFrom()), database.NullTime(s.VisibleUntil()), s.Locale(),
		database.FormatTime(s.CreatedAt()), database.FormatTime(s.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save section %s: %w", s.ID(), err)
	}
	return nil
}

func (r *SectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*section.Section, error) {
	row := r.exec(ctx).QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id.String())
	return scanSection(row)
}

func (r *SectionRepository) FindByPage(ctx context.Context, pageID uuid.UUID) ([]*section.Section, error) {
	rows, err := r.exec(ctx).Query(ctx, `
		SELECT `+sectionColumns+`
		FROM sections
		WHERE page_id = ?
		ORDER BY slot, position, created_at`, pageID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*section.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// Delete removes a section. A missing section is section.ErrSectionNotFound.
func (r *SectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.exec(ctx).Exec(ctx, `DELETE FROM sections WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return section.ErrSectionNotFound
	}
	return nil
}

func scanSection(row database.Row) (*section.Section, error) {
	var id, pageID, templateKey, slot, anchor, rawData, locale, createdAt, updatedAt string
	var position, active int64
	var visibleFrom, visibleUntil sql.NullString

	err := row.Scan(&id, &pageID, &templateKey, &slot, &position, &anchor, &rawData, &active,
		&visibleFrom, &visibleUntil, &locale, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, section.ErrSectionNotFound
		}
		return nil, err
	}

	base, err := database.RehydrateBase(id, createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", id, err)
	}
	page, err := uuid.Parse(pageID)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", id, err)
	}
	var data section.Data
	if err := json.Unmarshal([]byte(rawData), &data); err != nil {
		return nil, fmt.Errorf("section %s data: %w", id, err)
	}
	from, err := database.ParseNullTime(visibleFrom)
	if err != nil {
		return nil, err
	}
	until, err := database.ParseNullTime(visibleUntil)
	if err != nil {
		return nil, err
	}

	return section.RehydrateSection(base, page, templateKey, slot, int(position), anchor, data,
		database.Bool(active), from, until, locale), nil
}
