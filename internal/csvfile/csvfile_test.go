package csvfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reposcan/internal/core"
)

var loadedAt = time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)

const classified = `name,description,stars,language,category,url
notify,"GOV.UK Notify, the API",120,Python,Developer Tool / API,https://example.org/notify
ask-bot,Citizen chatbot,12,TypeScript,AI/ML,
terraform-mods,,40,HCL,Infrastructure / DevOps,
open-budget,"multi
line",0,R,,
`

func TestLoadParsesRowsInOrder(t *testing.T) {
	tbl, err := Load(strings.NewReader(classified), "classified.csv", loadedAt)
	require.NoError(t, err)

	want := []core.Repository{
		{Name: "notify", Description: "GOV.UK Notify, the API", Stars: 120, Language: "Python", Category: "Developer Tool / API"},
		{Name: "ask-bot", Description: "Citizen chatbot", Stars: 12, Language: "TypeScript", Category: "AI/ML"},
		{Name: "terraform-mods", Description: "", Stars: 40, Language: "HCL", Category: "Infrastructure / DevOps"},
		{Name: "open-budget", Description: "multi\nline", Stars: 0, Language: "R", Category: ""},
	}
	if diff := cmp.Diff(want, tbl.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, loadedAt, tbl.LoadedAt())
}

func TestLoadIsColumnOrderIndependent(t *testing.T) {
	in := "\ufeffCategory , stars,Language,NAME,description,Last Updated\nAI/ML,5.0,Go,a,chatbot,2025-01-02\n\n"
	tbl, err := Load(strings.NewReader(in), "reordered.csv", loadedAt)
	require.NoError(t, err)
	assert.Equal(t, []core.Repository{
		{Name: "a", Description: "chatbot", Stars: 5, Language: "Go", Category: "AI/ML", LastUpdated: "2025-01-02"},
	}, tbl.Rows())
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind ErrorKind
	}{
		{"empty input", "", KindMissingColumn},
		{"missing column", "name,description,stars,language\na,b,1,Go\n", KindMissingColumn},
		{"non-numeric stars", "name,description,stars,language,category\na,b,many,Go,X\n", KindInvalidValue},
		{"fractional stars", "name,description,stars,language,category\na,b,1.5,Go,X\n", KindInvalidValue},
		{"empty stars", "name,description,stars,language,category\na,b,,Go,X\n", KindInvalidValue},
		{"negative stars", "name,description,stars,language,category\na,b,-1,Go,X\n", KindInvalidValue},
		{"empty name", "name,description,stars,language,category\n,b,1,Go,X\n", KindInvalidValue},
		{"bad quoting", "name,description,stars,language,category\n\"a,b,1,Go,X\n", KindMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.in), "bad.csv", loadedAt)
			require.Error(t, err)
			assert.True(t, IsKind(err, tc.kind), "want kind %s, got %v", tc.kind, err)
			assert.Contains(t, err.Error(), "bad.csv")
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), loadedAt)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFileReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classified_repositories.csv")
	require.NoError(t, os.WriteFile(path, []byte(classified), 0o644))
	tbl, err := LoadFile(path, loadedAt)
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())
}

func TestExportRoundTrip(t *testing.T) {
	tbl, err := Load(strings.NewReader(classified), "classified.csv", loadedAt)
	require.NoError(t, err)

	views := map[string]core.FilterParams{
		"identity": core.DefaultFilter(),
		"stars":    {Category: core.AllCategories, MinStars: 12},
		"category": {Category: "AI/ML"},
		"search":   {Category: core.AllCategories, Search: "API"},
		"empty":    {Category: "nope"},
	}
	for name, params := range views {
		t.Run(name, func(t *testing.T) {
			view := core.Filter(tbl, params)
			data, err := Encode(tbl, view, WriteOptions{})
			require.NoError(t, err)

			back, err := Load(bytes.NewReader(data), "export.csv", loadedAt)
			require.NoError(t, err)
			if diff := cmp.Diff(view, back.Rows()); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportWithLastUpdated(t *testing.T) {
	tbl := core.NewTable([]core.Repository{
		{Name: "a", Description: "x", Stars: 1, Language: "Go", Category: "AI/ML"},
		{Name: "b", Description: "y", Stars: 2, Language: "Go", Category: "Other", LastUpdated: "2024-12-31"},
	}, loadedAt)

	data, err := Encode(tbl, tbl.Rows(), WriteOptions{IncludeLastUpdated: true})
	require.NoError(t, err)
	assert.Equal(t, "name,description,stars,language,category,Last Updated\n"+
		"a,x,1,Go,AI/ML,2025-06-03\n"+
		"b,y,2,Go,Other,2024-12-31\n", string(data))

	// A table that already carries the column survives a second export unchanged.
	first, err := Load(bytes.NewReader(data), "export.csv", loadedAt.Add(48*time.Hour))
	require.NoError(t, err)
	again, err := Encode(first, first.Rows(), WriteOptions{IncludeLastUpdated: true})
	require.NoError(t, err)
	second, err := Load(bytes.NewReader(again), "export2.csv", loadedAt)
	require.NoError(t, err)
	if diff := cmp.Diff(first.Rows(), second.Rows()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHeader(t *testing.T) {
	assert.Equal(t, RequiredColumns, Header(WriteOptions{}))
	assert.Equal(t, ColLastUpdated, Header(WriteOptions{IncludeLastUpdated: true})[5])
}
