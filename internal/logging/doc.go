// Package logging builds the slog loggers used across tonearm.
//
// It provides a human-oriented console handler and a JSON handler, helpers for
// component loggers, and extraction of standard structured fields (item ID,
// stage, correlation ID) from request contexts.
package logging
