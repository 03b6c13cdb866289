// Package pipeline sequences the daily sync: source fetches, reconciliation,
// the Notion upsert and the local export.
package pipeline

import "errors"

// Sentinel errors classifying pipeline failures. Adapters and the sink wrap
// these with fmt.Errorf("…: %w", …) so callers can branch with errors.Is.
var (
	// ErrSourceUnavailable: a source API stayed unreachable after the bounded
	// retry budget. Distinct from an empty result, which is valid data.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceDataInvalid: a source returned a record that could not be
	// normalized. The record is skipped; the rest of the window proceeds.
	ErrSourceDataInvalid = errors.New("source data invalid")

	// ErrSinkWriteFailed: the record store rejected the write permanently
	// (schema mismatch, bad request). Not retryable; aborts the run.
	ErrSinkWriteFailed = errors.New("sink write failed")

	// ErrSinkUnavailable: transient sink connectivity failure, surfaced after
	// the retry budget is spent.
	ErrSinkUnavailable = errors.New("sink unavailable")

	// ErrExportWriteFailed: the local snapshot could not be written. Non-fatal
	// when the upsert already succeeded.
	ErrExportWriteFailed = errors.New("export write failed")
)
