package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/core"
)

func TestParseCamara(t *testing.T) {
	cn, err := LookupHouse("cn")
	require.NoError(t, err)

	proposals := ParseCamara(cn, []Entry{
		{"Titulo": "PL 12/2020", "Autoria": "Dep. A, Dep. B", "ementa": "Altera a lei.", "Texto": "Art. 1º"},
		{"Titulo": "REQ 7", "ementa": "Requer.", "Texto": "texto"},
	}, fixedNow)
	require.Len(t, proposals, 2)

	p := proposals[0]
	assert.Equal(t, "Câmara dos Deputados", p.House)
	assert.Equal(t, core.JoinKey("Câmara dos Deputados_PL_12_2020"), p.UUID)
	assert.Equal(t, []string{"Dep. A", "Dep. B"}, p.Author)
	assert.Equal(t, "Altera a lei.", p.Subject)
	require.NotNil(t, p.PresentationDate)
	assert.Equal(t, "2020-01-01", *p.PresentationDate)
	assert.Equal(t, "2024-06-01", p.ScrapedAt)
	assert.Equal(t, 7, p.Length)
	assert.Equal(t,
		"https://www.camara.leg.br/busca-portal?contextoBusca=BuscaProposicoes"+
			"&filtros=%5B%7B%22numero%22%3A%20%2212%22%7D%2C%20%7B%22ano%22%3A%20%222020%22%7D%5D&tipos=PL&pagina=1",
		p.URL)

	q := proposals[1]
	assert.Equal(t, "REQ", q.Type)
	assert.Nil(t, q.Number)
	assert.Nil(t, q.Year)
	assert.Nil(t, q.PresentationDate)
	assert.Equal(t, core.JoinKey("Câmara dos Deputados_REQ__"), q.UUID)
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"abc-_.~/09": "abc-_.~/09",
		"a b":        "a%20b",
		`{"k": 1}`:   "%7B%22k%22%3A%201%7D",
		"ç":          "%C3%A7",
	}
	for in, want := range tests {
		assert.Equal(t, want, quote(in), in)
	}
}

func TestCamaraSource_Collect(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "cn", "ProposicaoComEmentas.json", `[
		{"Titulo": "PL 1/2021", "ementa": "Primeira.", "Texto": "a"},
		{"Titulo": "PL 2/2021", "ementa": "", "Texto": "b"},
		{"Titulo": "PL 3/2021", "ementa": "Terceira.", "Texto": "c"}
	]`)
	cn, err := LookupHouse("cn")
	require.NoError(t, err)

	src, err := New(cn, WithDatasetsDir(dir), WithClock(fixedClock))
	require.NoError(t, err)
	proposals, err := src.Collect(context.Background())
	require.NoError(t, err)

	titles := make([]string, 0, len(proposals))
	for _, p := range proposals {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"PL 1/2021", "PL 3/2021"}, titles)
	assert.Equal(t, filepath.Join(dir, "cn", "ProposicaoComEmentas.json"), src.(*CamaraSource).Path())
}
