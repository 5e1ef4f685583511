package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/assessor/core"
)

// OutputFile is the single-file output path of a house under dir.
func OutputFile(dir string, house *House) string {
	return filepath.Join(dir, house.OutputSlug()+"_proposicoes.json")
}

// WriteJSON writes all proposals as one indented JSON array to
// <dir>/<slug>_proposicoes.json and returns the path.
func WriteJSON(dir string, house *House, proposals []*core.Proposal) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	if proposals == nil {
		proposals = []*core.Proposal{}
	}
	data, err := encode(proposals)
	if err != nil {
		return "", err
	}
	path := OutputFile(dir, house)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteEach writes every proposal to <dir>/<slug>/<uuid>.json.
func WriteEach(dir string, house *House, proposals []*core.Proposal) error {
	out := filepath.Join(dir, house.OutputSlug())
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", out, err)
	}
	for _, p := range proposals {
		if p.UUID == "" {
			return fmt.Errorf("proposal %q has no uuid", p.Title)
		}
		data, err := encode(p)
		if err != nil {
			return err
		}
		path := filepath.Join(out, p.UUID+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// LoadJSON reads a JSON array of proposals as written by WriteJSON.
func LoadJSON(path string) ([]*core.Proposal, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var proposals []*core.Proposal
	if err := json.Unmarshal(Scrub(raw), &proposals); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedJSON, path, err)
	}
	return proposals, nil
}

// encode indents with two spaces and leaves non-ASCII and HTML characters as is.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}
