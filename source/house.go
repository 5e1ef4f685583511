package source

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Kind selects the collector that reads a house's documents.
type Kind int

const (
	// KindLegislAPI houses publish a metadata file and a full text file per state.
	KindLegislAPI Kind = iota
	// KindCamara is the federal chamber export with text and summary in one file.
	KindCamara
	// KindCIDSP is the São Paulo city council listing with one PDF per proposal.
	KindCIDSP
)

func (k Kind) String() string {
	switch k {
	case KindLegislAPI:
		return "legislapi"
	case KindCamara:
		return "camara"
	case KindCIDSP:
		return "cidsp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// URLBuilder derives the public URL of a proposal from its dataset entry and
// the joined metadata entry. An empty result means no URL is known.
type URLBuilder func(entry, meta Entry) string

// House is the capability record of one legislative body.
type House struct {
	Slug string
	Name string
	UF   string
	Kind Kind
	URL  URLBuilder

	// AltKeys returns fallback titles under which a metadata entry is indexed.
	AltKeys func(title string) []string
	// Noise holds patterns removed from extracted text on top of the defaults.
	Noise []*regexp.Regexp
}

// OutputSlug is the name used for the house's output files.
func (h *House) OutputSlug() string {
	return "proposicoes" + h.Slug
}

func (h *House) String() string {
	return h.Slug
}

const (
	spURL     = "https://www.al.sp.gov.br/propositura/?id=%s"
	mgURL     = "https://www.almg.gov.br/projetos-de-lei/%s/%s/%s"
	prURL     = "https://consultas.assembleia.pr.leg.br/#/pesquisa-legislativa"
	rsURL     = "https://ww4.al.rs.gov.br/legislativo/pesquisa?siglaTipoProposicao=%s&nroProposicao=%s&anoProposicao=%s"
	baURL     = "https://www.al.ba.gov.br/atividade-legislativa-nova/proposicao/%s.-%s-%s"
	scURL     = "https://portalelegis.alesc.sc.gov.br/proposicoes/processo-legislativo?search=&numeroPropositura=%s/%s"
	camaraURL = "https://www.camara.leg.br/busca-portal?contextoBusca=BuscaProposicoes&filtros=%s&tipos=%s&pagina=1"
)

var houses = map[string]*House{
	"sp": {
		Slug: "sp",
		Name: "Assembleia Legislativa de São Paulo",
		UF:   "sp",
		Kind: KindLegislAPI,
		URL: func(entry, _ Entry) string {
			if id := entry.String("IdProposicaoOrigem"); id != "" && id != "0" {
				return fmt.Sprintf(spURL, id)
			}
			return ""
		},
	},
	"mg": {
		Slug: "mg",
		Name: "Assembleia Legislativa de Minas Gerais",
		UF:   "mg",
		Kind: KindLegislAPI,
		URL: func(_, meta Entry) string {
			fields := strings.Fields(meta.String("Titulo"))
			numero, ano := meta.String("Numero"), meta.String("Ano")
			if len(fields) == 0 || numero == "" || ano == "" {
				return ""
			}
			return fmt.Sprintf(mgURL, strings.ToUpper(fields[0]), numero, ano)
		},
	},
	"pr": {
		Slug: "pr",
		Name: "Assembleia Legislativa do Paraná",
		UF:   "pr",
		Kind: KindLegislAPI,
		URL: func(_, _ Entry) string {
			return prURL
		},
	},
	"rs": {
		Slug: "rs",
		Name: "Assembleia Legislativa do Rio Grande do Sul",
		UF:   "rs",
		Kind: KindLegislAPI,
		URL:  titleURL(rsURL),
	},
	"sc": {
		Slug: "sc",
		Name: "Assembleia Legislativa de Santa Catarina",
		UF:   "sc",
		Kind: KindLegislAPI,
		URL: func(_, meta Entry) string {
			numero, ano := meta.String("Numero"), meta.String("Ano")
			if numero == "" || ano == "" {
				return ""
			}
			return fmt.Sprintf(scURL, numero, ano)
		},
		// The text file writes "PL 12 2024" where the metadata has "PL 12/2024".
		AltKeys: func(title string) []string {
			return []string{strings.TrimSpace(strings.ReplaceAll(title, "/", " "))}
		},
	},
	"ba": {
		Slug: "ba",
		Name: "Assembleia Legislativa da Bahia",
		UF:   "ba",
		Kind: KindLegislAPI,
		URL:  titleURL(baURL),
	},
	"cn": {
		Slug: "cn",
		Name: "Câmara dos Deputados",
		UF:   "cn",
		Kind: KindCamara,
	},
	"cidsp": {
		Slug: "cidsp",
		Name: "Câmara Municipal de São Paulo",
		UF:   "sp",
		Kind: KindCIDSP,
	},
}

// titleURL builds a URL from the "TIPO N/A" words of the entry title.
func titleURL(format string) URLBuilder {
	return func(entry, _ Entry) string {
		typ, number, year := titleParts(strings.TrimSpace(entry.String("Titulo")))
		if typ == "" || number == "" || year == "" {
			return ""
		}
		return fmt.Sprintf(format, typ, number, year)
	}
}

// LookupHouse returns the registered house for slug.
func LookupHouse(slug string) (*House, error) {
	h, ok := houses[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHouse, slug)
	}
	return h, nil
}

// HouseSlugs lists the registered slugs in sorted order.
func HouseSlugs() []string {
	slugs := make([]string, 0, len(houses))
	for slug := range houses {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
	return slugs
}

// Houses returns the registered houses sorted by slug.
func Houses() []*House {
	slugs := HouseSlugs()
	out := make([]*House, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, houses[slug])
	}
	return out
}
