package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/assessor/core"
)

// LegislAPISource reads a state assembly export: a metadata file with
// authorship, summary and dates, and a text file with the full texts.
type LegislAPISource struct {
	house  *House
	dir    string
	limit  int
	logger *slog.Logger
	now    func() time.Time
}

func newLegislAPISource(house *House, o *options) (*LegislAPISource, error) {
	if house.Kind != KindLegislAPI {
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, house.Slug)
	}
	if o.datasetsDir == "" {
		return nil, ErrDatasetsDirRequired
	}
	return &LegislAPISource{
		house:  house,
		dir:    o.datasetsDir,
		limit:  o.limit,
		logger: o.logger,
		now:    o.now,
	}, nil
}

func (s *LegislAPISource) House() *House {
	return s.house
}

// MetadataPath is <dir>/<uf>/Proposicoes<UF>.json.
func (s *LegislAPISource) MetadataPath() string {
	return filepath.Join(s.dir, s.house.UF, "Proposicoes"+strings.ToUpper(s.house.UF)+".json")
}

// TextPath is <dir>/<uf>/ProjetoInteiroTeor<UF>.json.
func (s *LegislAPISource) TextPath() string {
	return filepath.Join(s.dir, s.house.UF, "ProjetoInteiroTeor"+strings.ToUpper(s.house.UF)+".json")
}

// Collect loads the metadata table first, then parses every text entry.
func (s *LegislAPISource) Collect(ctx context.Context) ([]*core.Proposal, error) {
	metadata, err := readEntries(s.MetadataPath())
	if err != nil {
		return nil, err
	}
	table := NewMetadataTable(s.house, metadata)
	s.logger.Debug("metadata loaded", "entries", len(metadata), "keys", table.Len(), "fallback_keys", table.Fallbacks())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts, err := readEntries(s.TextPath())
	if err != nil {
		return nil, err
	}
	proposals := ParseLegislAPI(s.house, table, texts, s.now())
	total := len(proposals)
	proposals = keepValid(limitProposals(proposals, s.limit), s.logger)
	s.logger.Info("collected proposals", "entries", total, "kept", len(proposals))
	return proposals, nil
}

// ParseLegislAPI turns text entries into proposals, joining each one to its
// metadata by title. Entries with no metadata keep empty metadata fields.
func ParseLegislAPI(house *House, table *MetadataTable, entries []Entry, scrapedAt time.Time) []*core.Proposal {
	proposals := make([]*core.Proposal, 0, len(entries))
	for _, entry := range entries {
		title := strings.TrimSpace(entry.String("Titulo"))
		parsed := ParseTitle(title)
		meta, _ := table.Lookup(title)

		p := &core.Proposal{
			UUID:             core.JoinKey(title),
			Title:            title,
			House:            house.Name,
			Type:             parsed.Type,
			Number:           parsed.Number,
			Year:             parsed.Year,
			PresentationDate: meta.OptString("DataApresentacao"),
			Author:           SplitAuthors(meta.String("Autoria")),
			Subject:          meta.String("Ementa"),
			FullText:         entry.String("Texto"),
			Meta:             map[string]any(meta),
			ScrapedAt:        scrapedAt.Format(time.RFC3339),
		}
		p.Length = runeLen(p.FullText)
		if house.URL != nil {
			p.URL = house.URL(entry, meta)
		}
		proposals = append(proposals, p)
	}
	return proposals
}

func readEntries(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	entries, err := DecodeEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
