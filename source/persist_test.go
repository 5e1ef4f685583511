package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/core"
)

func sampleProposals() []*core.Proposal {
	date := "2024-03-01"
	return []*core.Proposal{
		{
			UUID:             core.JoinKey("PL 1/2024"),
			Title:            "PL 1/2024",
			House:            "Assembleia Legislativa de São Paulo",
			Type:             "PL",
			Number:           intPtr(1),
			Year:             intPtr(2024),
			PresentationDate: &date,
			Author:           []string{"Ana"},
			Subject:          "Dispõe sobre <nascentes> & rios",
			FullText:         "Art. 1º",
			Length:           7,
			URL:              "https://www.al.sp.gov.br/propositura/?id=1",
			ScrapedAt:        "2024-06-01T12:30:00Z",
		},
		{
			UUID:     core.JoinKey("MOC 2"),
			Title:    "MOC 2",
			House:    "Assembleia Legislativa de São Paulo",
			Type:     "MOC",
			Author:   []string{},
			Subject:  "Moção",
			FullText: "texto",
			Length:   5,
			URL:      "https://www.al.sp.gov.br/propositura/?id=2",
		},
	}
}

func TestWriteJSON_LoadJSON(t *testing.T) {
	dir := t.TempDir()
	house, err := LookupHouse("sp")
	require.NoError(t, err)

	path, err := WriteJSON(filepath.Join(dir, "output"), house, sampleProposals())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output", "proposicoessp_proposicoes.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "São Paulo")
	assert.Contains(t, string(raw), "<nascentes> & rios")
	assert.Contains(t, string(raw), "\n  {\n    \"uuid\": ")
	assert.Contains(t, string(raw), `"number": null`)

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, sampleProposals(), loaded)
}

func TestWriteJSON_Empty(t *testing.T) {
	dir := t.TempDir()
	house, err := LookupHouse("cn")
	require.NoError(t, err)

	path, err := WriteJSON(dir, house, nil)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestWriteEach(t *testing.T) {
	dir := t.TempDir()
	house, err := LookupHouse("sp")
	require.NoError(t, err)

	proposals := sampleProposals()
	require.NoError(t, WriteEach(dir, house, proposals))

	for _, p := range proposals {
		raw, err := os.ReadFile(filepath.Join(dir, "proposicoessp", p.UUID+".json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), p.Title)
	}

	err = WriteEach(dir, house, []*core.Proposal{{Title: "sem id"}})
	assert.ErrorContains(t, err, "has no uuid")
}

func TestLoadJSON_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadJSON(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": 1}]`), 0o644))
	_, err = LoadJSON(path)
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestLoadJSON_ScrubsControlCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte("[{\"title\": \"PL\x0b 1\"}]"), 0o644))

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "PL 1", loaded[0].Title)
}
