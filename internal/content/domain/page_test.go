package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	p, err := NewPage(" About-Me ", "  About me ", "en")
	require.NoError(t, err)

	assert.Equal(t, "about-me", p.Slug())
	assert.Equal(t, "About me", p.Title())
	assert.Equal(t, "en", p.Locale())
	assert.False(t, p.IsPublished())
}

func TestNewPage_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		title   string
		wantErr error
	}{
		{"empty slug", "", "Home", ErrInvalidSlug},
		{"slug with spaces", "about me", "About", ErrInvalidSlug},
		{"slug with trailing dash", "about-", "About", ErrInvalidSlug},
		{"blank title", "home", "  ", ErrEmptyPageTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPage(tt.slug, tt.title, "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

func TestPage_PublishAndRename(t *testing.T) {
	p, err := NewPage("home", "Home", "")
	require.NoError(t, err)

	p.Publish()
	assert.True(t, p.IsPublished())
	p.Unpublish()
	assert.False(t, p.IsPublished())

	require.NoError(t, p.Rename("Start"))
	assert.Equal(t, "Start", p.Title())
	assert.ErrorIs(t, p.Rename(""), ErrEmptyPageTitle)
	assert.Equal(t, "Start", p.Title())
}

func TestPage_SetLocale(t *testing.T) {
	p, err := NewPage("home", "Home", "")
	require.NoError(t, err)

	p.SetLocale(" nl ")
	assert.Equal(t, "nl", p.Locale())
}

func TestPageSavedEvent(t *testing.T) {
	p, err := NewPage("home", "Home", "en")
	require.NoError(t, err)
	p.Publish()

	event := NewPageSavedEvent(p)
	assert.Equal(t, RoutingKeyPageSaved, event.RoutingKey())
	assert.Equal(t, AggregateType, event.AggregateType())
	assert.Equal(t, p.ID(), event.AggregateID())
	assert.Equal(t, "home", event.PageSlug)
	assert.True(t, event.Published)
}
