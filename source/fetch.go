package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// CIDSPBaseURL is the public consultation site of the São Paulo city council.
	CIDSPBaseURL = "https://splegisconsulta.saopaulo.sp.leg.br"

	// DefaultPageSize is the number of listing rows requested per page.
	DefaultPageSize = 100

	// DefaultHTTPTimeout bounds a single listing or document request.
	DefaultHTTPTimeout = 60 * time.Second

	listingPath = "/Pesquisa/PageDataProjeto"
	refererPath = "/Pesquisa/IndexProjeto"
	maxDocument = 64 << 20
)

// Fetcher retrieves the remote listing pages and documents of a source.
type Fetcher interface {
	// Listing returns one page of results starting at offset start.
	Listing(ctx context.Context, draw, start, length int) (*ListingPage, error)
	// Document downloads the body at url.
	Document(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is a Fetcher backed by an http.Client.
type HTTPFetcher struct {
	client  *http.Client
	baseURL string
	maxBody int64
}

// NewHTTPFetcher creates a fetcher for baseURL. A nil client gets a default
// one with DefaultHTTPTimeout.
func NewHTTPFetcher(client *http.Client, baseURL string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPFetcher{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxBody: maxDocument,
	}
}

// Listing posts the listing form and decodes the page.
func (f *HTTPFetcher) Listing(ctx context.Context, draw, start, length int) (*ListingPage, error) {
	form := url.Values{
		"draw":                {strconv.Itoa(draw)},
		"start":               {strconv.Itoa(start)},
		"length":              {strconv.Itoa(length)},
		"tipo":                {"0"},
		"somenteEmTramitacao": {"false"},
		"order[0][column]":    {"1"},
		"order[0][dir]":       {"desc"},
		"search[value]":       {""},
		"search[regex]":       {"false"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+listingPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", f.baseURL+refererPath)

	body, err := f.do(req)
	if err != nil {
		return nil, err
	}
	var page ListingPage
	if err := json.NewDecoder(bytes.NewReader(Scrub(body))).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: listing page at %d: %v", ErrMalformedJSON, start, err)
	}
	return &page, nil
}

// Document downloads url, which may be absolute or relative to the base URL.
func (f *HTTPFetcher) Document(ctx context.Context, u string) ([]byte, error) {
	if strings.HasPrefix(u, "/") {
		u = f.baseURL + u
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return f.do(req)
}

func (f *HTTPFetcher) do(req *http.Request) ([]byte, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, req.URL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, req.URL, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: %s: %w (limit %d bytes)", ErrFetchFailed, req.URL, ErrDocumentTooLarge, f.maxBody)
	}
	return body, nil
}
