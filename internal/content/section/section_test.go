package section

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/folio/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSection(t *testing.T) {
	pageID := uuid.New()
	s, err := NewSection(pageID, " hero_primary ", "hero", 0)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.Equal(t, pageID, s.PageID())
	assert.Equal(t, "hero_primary", s.TemplateKey())
	assert.Equal(t, "hero", s.Slot())
	assert.Equal(t, 0, s.Position())
	assert.True(t, s.IsActive())
	assert.Equal(t, Data{}, s.Data())
}

func TestNewSection_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		template string
		slot     string
		position int
		wantErr  error
	}{
		{"blank template", " ", "main", 0, ErrEmptyTemplateKey},
		{"negative position", "hero_primary", "main", -1, ErrNegativePosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSection(uuid.New(), tt.template, tt.slot, tt.position)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, s)
		})
	}
}

func TestNewSection_WithoutSlot(t *testing.T) {
	s, err := NewSection(uuid.New(), "rich_text_block", "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, s.Slot())

	require.NoError(t, s.Place("rich_text_block", "main", 1))
	assert.Equal(t, "main", s.Slot())
	require.NoError(t, s.Place("rich_text_block", "", 1))
	assert.Empty(t, s.Slot())
}

func TestSection_DataIsCopied(t *testing.T) {
	s, err := NewSection(uuid.New(), "hero_primary", "hero", 0)
	require.NoError(t, err)

	in := Data{"title": "Hello"}
	s.SetData(in)
	in["title"] = "changed"
	assert.Equal(t, "Hello", s.Data()["title"])

	out := s.Data()
	out["title"] = "changed again"
	assert.Equal(t, "Hello", s.Data()["title"])
}

func TestSection_IsVisibleAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	from := now.Add(-time.Hour)
	until := now.Add(time.Hour)

	s, err := NewSection(uuid.New(), "hero_primary", "hero", 0)
	require.NoError(t, err)
	assert.True(t, s.IsVisibleAt(now), "no window means always visible")

	require.NoError(t, s.SetVisibility(&from, &until))
	assert.True(t, s.IsVisibleAt(now))
	assert.True(t, s.IsVisibleAt(from), "start is inclusive")
	assert.False(t, s.IsVisibleAt(until), "end is exclusive")
	assert.False(t, s.IsVisibleAt(from.Add(-time.Second)))

	s.Deactivate()
	assert.False(t, s.IsVisibleAt(now))
	s.Activate()
	assert.True(t, s.IsVisibleAt(now))

	assert.ErrorIs(t, s.SetVisibility(&until, &from), ErrInvalidVisibility)
	require.NoError(t, s.SetVisibility(nil, &until))
	assert.True(t, s.IsVisibleAt(from.Add(-24*time.Hour)))
}

func TestSection_MatchesLocale(t *testing.T) {
	s, err := NewSection(uuid.New(), "hero_primary", "hero", 0)
	require.NoError(t, err)

	assert.True(t, s.MatchesLocale("en"))
	assert.True(t, s.MatchesLocale("nl"))

	s.SetLocale("nl")
	assert.True(t, s.MatchesLocale("NL"))
	assert.False(t, s.MatchesLocale("en"))
}

func TestSection_SetAnchor(t *testing.T) {
	s, err := NewSection(uuid.New(), "hero_primary", "hero", 0)
	require.NoError(t, err)

	s.SetAnchor(" #intro ")
	assert.Equal(t, "intro", s.Anchor())
}

func TestRehydrateSection(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := RehydrateSection(
		domain.RehydrateBaseEntity(id, created, created),
		uuid.New(), "rich_text_block", "main", 2, "about", nil, false, nil, nil, "en",
	)

	assert.Equal(t, id, s.ID())
	assert.Equal(t, 2, s.Position())
	assert.Equal(t, Data{}, s.Data())
	assert.False(t, s.IsActive())
	assert.Equal(t, "en", s.Locale())
}

func TestSectionEvents(t *testing.T) {
	s, err := NewSection(uuid.New(), "hero_primary", "hero", 1)
	require.NoError(t, err)

	saved := NewSavedEvent(s, "home")
	assert.Equal(t, RoutingKeySaved, saved.RoutingKey())
	assert.Equal(t, s.ID(), saved.AggregateID())

	payload, err := json.Marshal(saved)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "home", decoded["page_slug"])
	assert.Equal(t, "hero_primary", decoded["template_key"])

	deleted := NewDeletedEvent(s, "home")
	assert.Equal(t, RoutingKeyDeleted, deleted.RoutingKey())
	assert.Equal(t, s.PageID(), deleted.PageID)
}
