package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainAgency(t *testing.T) {
	t.Parallel()

	ft := NewFranchiseTable(nil)
	tests := []struct {
		label string
		want  string
	}{
		{"Belle Property - Manly", "belle property"},
		{"Ray White Dee Why", "ray white"},
		{"RAY WHITE MANLY", "ray white"},
		{"McGrath Northern Beaches", "mcgrath"},
		{"Cunninghams Real Estate Manly", "cunninghams real"},
		{"Solo", "solo"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ft.MainAgency(tt.label), tt.label)
	}
}

func TestNewFranchiseTable_Custom(t *testing.T) {
	t.Parallel()

	ft := NewFranchiseTable([]string{" Cunninghams ", ""})
	assert.Equal(t, []string{"cunninghams"}, ft.Fragments())
	assert.Equal(t, "cunninghams", ft.MainAgency("Cunninghams Real Estate Manly"))
	assert.Equal(t, "ray white", ft.MainAgency("Ray White Dee Why"))
}

func TestLoadFranchiseTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "franchises.yaml")
	require.NoError(t, os.WriteFile(path, []byte("franchises:\n  - Cunninghams\n  - Ray White\n"), 0o644))

	ft, err := LoadFranchiseTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cunninghams", "ray white"}, ft.Fragments())

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("other: 1\n"), 0o644))
	_, err = LoadFranchiseTable(empty)
	assert.Error(t, err)

	_, err = LoadFranchiseTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
