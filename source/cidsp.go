package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"code.sajari.com/docconv"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/normalize"
)

const documentPath = "/ArquivoProcesso/GerarArquivoProcessoPorID/%s?%s"

// ListingPage is one page of the city council listing.
type ListingPage struct {
	Draw            int           `json:"draw"`
	RecordsTotal    int           `json:"recordsTotal"`
	RecordsFiltered int           `json:"recordsFiltered"`
	Data            []ListingItem `json:"data"`
}

// ListingItem is one proposal row of the listing.
type ListingItem struct {
	Codigo      json.Number  `json:"codigo"`
	Texto       string       `json:"texto"`
	Sigla       string       `json:"sigla"`
	Numero      *int         `json:"numero"`
	Ano         *int         `json:"ano"`
	Ementa      string       `json:"ementa"`
	Promoventes []Promovente `json:"promoventes"`
	NatoDigital bool         `json:"natodigital"`
}

// Promovente is an author entry of a listing row.
type Promovente struct {
	Texto string `json:"texto"`
}

// DocumentURL is the PDF address of the item. Born-digital documents are
// served with their referenced files, scanned ones with their attachments.
func (it ListingItem) DocumentURL(baseURL string) string {
	query := "filtroAnexo=1"
	if it.NatoDigital {
		query = "referidas=true"
	}
	return strings.TrimSuffix(baseURL, "/") + fmt.Sprintf(documentPath, it.Codigo, query)
}

// NewListingProposal fills every field a listing row provides. FullText,
// Length and PresentationDate are left for the document. Rows without a
// code are skipped.
func NewListingProposal(house *House, item ListingItem, baseURL string, scrapedAt time.Time) (*core.Proposal, bool) {
	code := item.Codigo.String()
	if code == "" || code == "0" {
		return nil, false
	}
	authors := make([]string, 0, len(item.Promoventes))
	for _, p := range item.Promoventes {
		authors = append(authors, strings.TrimSpace(p.Texto))
	}
	return &core.Proposal{
		UUID:      core.JoinKey(code),
		Title:     strings.TrimSpace(item.Texto),
		House:     house.Name,
		Type:      strings.TrimSpace(item.Sigla),
		Number:    item.Numero,
		Year:      item.Ano,
		Author:    authors,
		Subject:   strings.TrimSpace(item.Ementa),
		URL:       item.DocumentURL(baseURL),
		ScrapedAt: scrapedAt.Format(time.RFC3339),
		Meta:      map[string]any{"source_json_codigo": code},
	}, true
}

// PDFExtractor returns the raw text of a PDF.
type PDFExtractor func(pdf []byte) (string, error)

// PDFText extracts the text layer of a PDF with docconv.
func PDFText(pdf []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(pdf), "application/pdf", false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// ApplyDocument sets the body of p from a downloaded PDF. When no text can be
// read the body becomes the unreadable sentinel, the date is cleared and the
// extraction error is returned.
func ApplyDocument(p *core.Proposal, pdf []byte, extract PDFExtractor, n *normalize.Normalizer) error {
	raw, err := extract(pdf)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = ErrEmptyPDF
	}
	if err != nil {
		p.FullText = normalize.Unreadable
		p.Length = runeLen(p.FullText)
		p.PresentationDate = nil
		return err
	}
	p.FullText = raw
	n.Apply(p)
	return nil
}

// MarkMissing sets the body of p to the not-found sentinel.
func MarkMissing(p *core.Proposal) {
	p.FullText = normalize.NotFound
	p.Length = runeLen(p.FullText)
	p.PresentationDate = nil
}

// CIDSPSource pages through the city council listing and downloads the PDF
// of every row on a worker pool.
type CIDSPSource struct {
	house      *House
	fetcher    Fetcher
	baseURL    string
	pageSize   int
	limit      int
	workers    int
	normalizer *normalize.Normalizer
	extract    PDFExtractor
	logger     *slog.Logger
	now        func() time.Time
}

func newCIDSPSource(house *House, o *options) (*CIDSPSource, error) {
	if house.Kind != KindCIDSP {
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, house.Slug)
	}
	n := o.normalizer
	if n == nil {
		var err error
		n, err = normalize.New(normalize.WithExtraNoise(house.Noise...))
		if err != nil {
			return nil, err
		}
	}
	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(o.client, o.baseURL)
	}
	return &CIDSPSource{
		house:      house,
		fetcher:    fetcher,
		baseURL:    o.baseURL,
		pageSize:   o.pageSize,
		limit:      o.limit,
		workers:    o.workers,
		normalizer: n,
		extract:    o.extract,
		logger:     o.logger,
		now:        o.now,
	}, nil
}

func (s *CIDSPSource) House() *House {
	return s.house
}

// Collect reads listing pages until the listing or the limit is exhausted.
// Per-document failures are recovered with a sentinel body and reported
// together in the returned error alongside the proposals.
func (s *CIDSPSource) Collect(ctx context.Context) ([]*core.Proposal, error) {
	collector, err := NewCollector(s.workers, s.logger)
	if err != nil {
		return nil, err
	}
	defer collector.Release()

	if s.limit > 0 {
		s.logger.Info("collection limited", "limit", s.limit)
	}

	var pending []<-chan Result
	processed := 0
	draw, start := 1, 0
listing:
	for {
		page, err := s.fetcher.Listing(ctx, draw, start, s.pageSize)
		if err != nil {
			if len(pending) == 0 {
				return nil, err
			}
			s.logger.Error("listing failed, keeping documents already queued", "start", start, "error", err)
			break
		}
		for _, item := range page.Data {
			if s.limit > 0 && processed >= s.limit {
				s.logger.Info("limit reached", "limit", s.limit)
				break listing
			}
			processed++
			p, ok := NewListingProposal(s.house, item, s.baseURL, s.now())
			if !ok {
				continue
			}
			pending = append(pending, collector.Submit(ctx, func(ctx context.Context) (*core.Proposal, error) {
				return s.fill(ctx, p)
			}))
		}
		start += s.pageSize
		draw++
		if len(page.Data) == 0 || start >= page.RecordsFiltered {
			break
		}
		s.logger.Debug("next listing page", "start", start)
	}

	proposals, docErr := collector.Gather(ctx, pending)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total := len(proposals)
	proposals = keepValid(proposals, s.logger)
	s.logger.Info("collected proposals", "listed", processed, "documents", total, "kept", len(proposals))
	return proposals, docErr
}

// fill downloads and extracts the document of p. A failed download or
// extraction still yields p, carrying the matching sentinel.
func (s *CIDSPSource) fill(ctx context.Context, p *core.Proposal) (*core.Proposal, error) {
	pdf, err := s.fetcher.Document(ctx, p.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("failed to download document", "title", p.Title, "url", p.URL, "error", err)
		MarkMissing(p)
		return p, fmt.Errorf("%s: %w", p.Title, err)
	}
	if err := ApplyDocument(p, pdf, s.extract, s.normalizer); err != nil {
		s.logger.Error("failed to read document", "title", p.Title, "url", p.URL, "error", err)
		return p, fmt.Errorf("%s: %w", p.Title, err)
	}
	return p, nil
}
