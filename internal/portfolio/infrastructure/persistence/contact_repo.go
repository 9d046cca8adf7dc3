package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/folio/internal/portfolio/domain"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
)

const contactColumns = `id, kind, value, url, icon, visible, position, translations,
	created_at, updated_at`

// ContactChannelRepository implements domain.ContactChannelRepository.
type ContactChannelRepository struct {
	conn database.Connection
}

// NewContactChannelRepository creates a contact channel repository over conn.
func NewContactChannelRepository(conn database.Connection) *ContactChannelRepository {
	return &ContactChannelRepository{conn: conn}
}

func (r *ContactChannelRepository) Save(ctx context.Context, c *domain.ContactChannel) error {
	translations, err := encodeJSON(c.Translations())
	if err != nil {
		return err
	}

	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO contact_channels (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			value = excluded.value,
			url = excluded.url,
			icon = excluded.icon,
			visible = excluded.visible,
			position = excluded.position,
			translations = excluded.translations,
			updated_at = excluded.updated_at`,
		c.ID().String(), c.Kind(), c.Value(), c.ExplicitURL(), c.Icon(),
		database.Flag(c.IsVisible()), c.Position(), translations,
		database.FormatTime(c.CreatedAt()), database.FormatTime(c.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save contact channel %s: %w", c.Kind(), err)
	}
	return nil
}

func (r *ContactChannelRepository) FindVisible(ctx context.Context) ([]*domain.ContactChannel, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+contactColumns+` FROM contact_channels WHERE visible = 1 ORDER BY position, kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*domain.ContactChannel
	for rows.Next() {
		var id, kind, value, url, icon, translations, createdAt, updatedAt string
		var visible int64
		var position int
		if err := rows.Scan(&id, &kind, &value, &url, &icon, &visible, &position,
			&translations, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		base, err := database.RehydrateBase(id, createdAt, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("contact channel %s: %w", id, err)
		}
		tr, err := decodeTranslations(translations)
		if err != nil {
			return nil, fmt.Errorf("contact channel %s: %w", id, err)
		}

		channels = append(channels, domain.RehydrateContactChannel(base, kind, value, url, icon,
			database.Bool(visible), position, tr))
	}
	return channels, rows.Err()
}
