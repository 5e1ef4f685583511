package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseURL(t *testing.T) {
	tests := []struct {
		slug  string
		entry Entry
		meta  Entry
		want  string
	}{
		{"sp", Entry{"IdProposicaoOrigem": json.Number("1234")}, nil, "https://www.al.sp.gov.br/propositura/?id=1234"},
		{"sp", Entry{}, nil, ""},
		{"mg", nil, Entry{"Titulo": "pl 10/2023", "Numero": "10", "Ano": json.Number("2023")}, "https://www.almg.gov.br/projetos-de-lei/PL/10/2023"},
		{"mg", nil, Entry{"Titulo": "pl 10/2023", "Numero": "10"}, ""},
		{"pr", nil, nil, "https://consultas.assembleia.pr.leg.br/#/pesquisa-legislativa"},
		{"rs", Entry{"Titulo": " pl 45/2022 "}, nil, "https://ww4.al.rs.gov.br/legislativo/pesquisa?siglaTipoProposicao=PL&nroProposicao=45&anoProposicao=2022"},
		{"rs", Entry{"Titulo": "PL 45"}, nil, ""},
		{"rs", Entry{"Titulo": "PL"}, nil, ""},
		{"ba", Entry{"Titulo": "PEC 3/2021"}, nil, "https://www.al.ba.gov.br/atividade-legislativa-nova/proposicao/PEC.-3-2021"},
		{"sc", nil, Entry{"Numero": json.Number("77"), "Ano": "2024"}, "https://portalelegis.alesc.sc.gov.br/proposicoes/processo-legislativo?search=&numeroPropositura=77/2024"},
		{"sc", nil, Entry{"Numero": json.Number("77")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.slug+"/"+tt.want, func(t *testing.T) {
			h, err := LookupHouse(tt.slug)
			require.NoError(t, err)
			require.NotNil(t, h.URL)
			assert.Equal(t, tt.want, h.URL(tt.entry, tt.meta))
		})
	}
}

func TestLookupHouse(t *testing.T) {
	h, err := LookupHouse(" SP ")
	require.NoError(t, err)
	assert.Equal(t, "Assembleia Legislativa de São Paulo", h.Name)
	assert.Equal(t, KindLegislAPI, h.Kind)
	assert.Equal(t, "proposicoessp", h.OutputSlug())

	_, err = LookupHouse("xx")
	assert.ErrorIs(t, err, ErrUnknownHouse)
}

func TestHouseSlugs(t *testing.T) {
	assert.Equal(t, []string{"ba", "cidsp", "cn", "mg", "pr", "rs", "sc", "sp"}, HouseSlugs())

	hs := Houses()
	require.Len(t, hs, 8)
	assert.Equal(t, "ba", hs[0].Slug)
	assert.Equal(t, "Câmara Municipal de São Paulo", hs[1].Name)
	assert.Equal(t, "Câmara dos Deputados", hs[2].Name)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "legislapi", KindLegislAPI.String())
	assert.Equal(t, "camara", KindCamara.String())
	assert.Equal(t, "cidsp", KindCIDSP.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
