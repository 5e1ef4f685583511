// Package normalize isolates the legal body of a proposal from noisy
// extracted text (PDF or OCR output) and cleans it for chunking.
//
// The stage is total: every input produces an output. When no body can be
// found the caller gets a sentinel text and no presentation date instead of
// an error.
package normalize
