package page

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/adapter/cli/clitest"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
	"github.com/felixgeelhaar/folio/internal/content/domain"
)

var sectionIDPattern = regexp.MustCompile(`section ([0-9a-f-]{36})`)

func TestPageLifecycle(t *testing.T) {
	clitest.NewApp(t)

	out, err := clitest.Run(t, Cmd, "list")
	require.NoError(t, err)
	assert.Equal(t, "No pages found.\n", out)

	out, err = clitest.Run(t, Cmd, "save", "home", "--title", "Home", "--published")
	require.NoError(t, err)
	assert.Contains(t, out, "Created page home")

	out, err = clitest.Run(t, Cmd, "save", "home", "--title", "Welcome", "--published")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated page home")

	out, err = clitest.Run(t, Cmd, "save", "drafts", "--title", "Drafts")
	require.NoError(t, err)
	assert.Contains(t, out, "Created page drafts")

	out, err = clitest.Run(t, Cmd, "list")
	require.NoError(t, err)
	assert.Regexp(t, `home\s+published\s+Welcome`, out)
	assert.Regexp(t, `drafts\s+draft\s+Drafts`, out)

	out, err = clitest.Run(t, SectionCmd, "save", "home",
		"--template", "hero_primary", "--slot", "hero", "--data", `{"title":"Hello"}`)
	require.NoError(t, err)
	match := sectionIDPattern.FindStringSubmatch(out)
	require.Len(t, match, 2, out)
	heroID := match[1]

	out, err = clitest.Run(t, Cmd, "render", "home", "--json")
	require.NoError(t, err)
	var page queries.RenderedPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, "Welcome", page.Title)
	require.Len(t, page.Sections, 1)
	assert.Equal(t, "Hello", page.Sections[0].Fields["title"])

	out, err = clitest.Run(t, Cmd, "render", "home")
	require.NoError(t, err)
	assert.Contains(t, out, "[hero #0] hero_primary")

	_, err = clitest.Run(t, Cmd, "render", "drafts")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	_, err = clitest.Run(t, Cmd, "render", "drafts", "--drafts")
	assert.NoError(t, err)

	out, err = clitest.Run(t, SectionCmd, "delete", heroID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted section "+heroID+"\n", out)
}

func TestSectionSave_Errors(t *testing.T) {
	clitest.NewApp(t)
	_, err := clitest.Run(t, Cmd, "save", "home", "--title", "Home")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
	}{
		{"missing template flag", []string{"save", "home", "--slot", "hero"}},
		{"unknown template", []string{"save", "home", "--template", "nope", "--slot", "main"}},
		{"slot not allowed", []string{"save", "home", "--template", "hero_primary", "--slot", "footer"}},
		{"malformed data", []string{"save", "home", "--template", "hero_primary", "--slot", "hero", "--data", "[1]"}},
		{"bad id", []string{"save", "home", "--template", "hero_primary", "--slot", "hero", "--id", "x"}},
		{"bad visibility", []string{"save", "home", "--template", "hero_primary", "--slot", "hero", "--visible-from", "soon"}},
		{"unknown page", []string{"save", "missing", "--template", "hero_primary", "--slot", "hero"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := clitest.Run(t, SectionCmd, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestSectionDelete_BadID(t *testing.T) {
	clitest.NewApp(t)
	_, err := clitest.Run(t, SectionCmd, "delete", "not-a-uuid")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTime("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())

	got, err = parseTime("2026-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = parseTime("tomorrow")
	assert.Error(t, err)
}
