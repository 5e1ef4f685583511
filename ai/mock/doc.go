// Package mock provides test doubles for the ai package interfaces.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "merenda escolar")
//
//	// Custom behavior injection
//	embedder.WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	})
//
//	count := embedder.CallCount()
//
// The default embedder returns deterministic unit vectors derived from an
// FNV hash of the text, so identical texts score 1.0 against each other.
package mock
