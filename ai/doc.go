// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the embedding abstraction used to vectorize chunk
// records and search queries.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible embedding APIs through langchaingo
//   - ai/mock: deterministic test double
//
// Public constructors return the interface type; mock constructors return
// concrete types so tests can inspect call counts and inject behavior.
//
// # Retries
//
// Embedding calls go over the network and fail transiently. Backoff retries
// an operation with exponential delays; WithRetry wraps an Embedder so every
// call goes through it:
//
//	cfg := ai.NewConfig(ai.WithEmbeddingHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Dispõe sobre a merenda escolar")
//
// Vectors are normalized with NormalizeVector before storage, so Dot is the
// cosine similarity.
package ai
