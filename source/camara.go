package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/assessor/core"
)

// CamaraSource reads the federal chamber export, which carries text,
// summary and authorship in a single file.
type CamaraSource struct {
	house  *House
	dir    string
	limit  int
	logger *slog.Logger
	now    func() time.Time
}

func newCamaraSource(house *House, o *options) (*CamaraSource, error) {
	if house.Kind != KindCamara {
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, house.Slug)
	}
	if o.datasetsDir == "" {
		return nil, ErrDatasetsDirRequired
	}
	return &CamaraSource{
		house:  house,
		dir:    o.datasetsDir,
		limit:  o.limit,
		logger: o.logger,
		now:    o.now,
	}, nil
}

func (s *CamaraSource) House() *House {
	return s.house
}

// Path is <dir>/cn/ProposicaoComEmentas.json.
func (s *CamaraSource) Path() string {
	return filepath.Join(s.dir, s.house.UF, "ProposicaoComEmentas.json")
}

func (s *CamaraSource) Collect(ctx context.Context) ([]*core.Proposal, error) {
	entries, err := readEntries(s.Path())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proposals := ParseCamara(s.house, entries, s.now())
	total := len(proposals)
	proposals = keepValid(limitProposals(proposals, s.limit), s.logger)
	s.logger.Info("collected proposals", "entries", total, "kept", len(proposals))
	return proposals, nil
}

// ParseCamara turns chamber entries into proposals. The presentation date is
// only known to the year and is set to January 1st of it.
func ParseCamara(house *House, entries []Entry, scrapedAt time.Time) []*core.Proposal {
	proposals := make([]*core.Proposal, 0, len(entries))
	for _, entry := range entries {
		title := strings.TrimSpace(entry.String("Titulo"))
		parsed := ParseTitle(title)
		number, year := optInt(parsed.Number), optInt(parsed.Year)

		p := &core.Proposal{
			UUID:      core.JoinKey(fmt.Sprintf("%s_%s_%s_%s", house.Name, parsed.Type, number, year)),
			Title:     title,
			House:     house.Name,
			Type:      parsed.Type,
			Number:    parsed.Number,
			Year:      parsed.Year,
			Author:    SplitAuthors(entry.String("Autoria")),
			Subject:   entry.String("ementa"),
			FullText:  entry.String("Texto"),
			URL:       camaraProposalURL(parsed.Type, number, year),
			ScrapedAt: scrapedAt.UTC().Format(time.DateOnly),
		}
		if parsed.Year != nil {
			date := year + "-01-01"
			p.PresentationDate = &date
		}
		p.Length = runeLen(p.FullText)
		proposals = append(proposals, p)
	}
	return proposals
}

func camaraProposalURL(typ, number, year string) string {
	filters := fmt.Sprintf(`[{"numero": %q}, {"ano": %q}]`, number, year)
	return fmt.Sprintf(camaraURL, quote(filters), typ)
}

// quote percent-encodes everything except unreserved characters and "/".
func quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '/':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
