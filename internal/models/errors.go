package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for external collaborator failures. Callers match these
// with errors.Is; the engine downgrades to structural-only mode on the
// first two and records the third as a warning on an otherwise valid report.
var (
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrIndexUnavailable     = errors.New("vector index unavailable")
	ErrUpsertFailed         = errors.New("embedding upsert failed")
	ErrComparisonCanceled   = errors.New("comparison run canceled")
)

// MalformedSpecError reports input that cannot be interpreted as an API
// specification document at all. Merely incomplete documents do not
// produce this error; the parser extracts what it can from them.
type MalformedSpecError struct {
	ApiName string
	Reason  string
	Err     error
}

func (e *MalformedSpecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed specification %q: %s: %v", e.ApiName, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed specification %q: %s", e.ApiName, e.Reason)
}

func (e *MalformedSpecError) Unwrap() error {
	return e.Err
}
