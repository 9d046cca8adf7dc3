package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute", filepath.Join(dir, "templates.yaml"), false},
		{"dot segments are cleaned", filepath.Join(dir, "a", "..", "templates.yaml"), false},
		{"empty", "  ", true},
		{"command substitution", "$(rm -rf /).yaml", true},
		{"pipe", "templates.yaml|cat", true},
		{"brace expansion", "templates.{yaml,yml}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsafePath)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))
			assert.Equal(t, "templates.yaml", filepath.Base(got))
		})
	}
}

func TestValidateFilePath_Relative(t *testing.T) {
	got, err := ValidateFilePath("config/templates.yaml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestValidateFilePathInDir(t *testing.T) {
	base := t.TempDir()

	got, err := ValidateFilePathInDir(filepath.Join(base, "pages", "home.yaml"), base)
	require.NoError(t, err)
	assert.Contains(t, got, "home.yaml")

	_, err = ValidateFilePathInDir(filepath.Join(base, "..", "escape.yaml"), base)
	assert.ErrorIs(t, err, ErrUnsafePath)

	_, err = ValidateFilePathInDir(filepath.Join(base+"-sibling", "x.yaml"), base)
	assert.ErrorIs(t, err, ErrUnsafePath)

	_, err = ValidateFilePathInDir("x.yaml", "")
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestSafeReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates: []\n"), 0o600))

	data, err := SafeReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "templates: []\n", string(data))

	_, err = SafeReadFile(path + ";")
	assert.ErrorIs(t, err, ErrUnsafePath)

	_, err = SafeReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}
