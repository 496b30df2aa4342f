package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContent(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "i.AI Opportunities Scan Dashboard", p.Title)
	assert.Contains(t, p.Subtitle, "not government policy")
	assert.Len(t, p.Schema, 6)

	ids := make([]string, 0, len(p.Panels))
	for _, panel := range p.Panels {
		ids = append(ids, panel.ID)
		assert.NotEmpty(t, panel.Info, "panel %s should carry an info blurb", panel.ID)
	}
	assert.Equal(t, []string{"whats-new", "strategic-qa", "idea-engine", "missions"}, ids)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Panels)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: "  Custom  "
panels:
  - id: missions
    title: Missions
    items:
      - title: Growth
        categories: [" AI/ML ", "", Other]
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Custom", p.Title)
	item := p.Panels[0].Items[0]
	assert.Equal(t, []string{"AI/ML", "Other"}, item.Categories)
	assert.True(t, item.Linked())
	assert.Equal(t, 3, item.RepositoryCount(map[string]int{"AI/ML": 1, "Other": 2, "Data": 9}))
	assert.Equal(t, 0, Item{}.RepositoryCount(map[string]int{"AI/ML": 1}))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), ErrRead},
		{"bad yaml", write("bad.yaml", "title: [unclosed\n"), ErrDecode},
		{"unknown key", write("typo.yaml", "title: x\npanles: []\n"), ErrDecode},
		{"no title", write("notitle.yaml", "panels: []\n"), ErrInvalid},
		{"duplicate panel", write("dup.yaml", "title: x\npanels:\n  - {id: a, title: A}\n  - {id: a, title: B}\n"), ErrInvalid},
		{"panel without id", write("noid.yaml", "title: x\npanels:\n  - {title: A}\n"), ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
