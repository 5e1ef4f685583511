// Package chunking splits normalized text into overlapping, token-bounded
// chunks whose boundaries fall on whitespace.
//
// Tokenization is delegated to a Tokenizer, so the algorithm works with any
// encoder whose Decode inverts Encode. TiktokenTokenizer adapts the OpenAI
// BPE encodings used by the embedding models.
package chunking
