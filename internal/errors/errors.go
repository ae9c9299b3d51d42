package errors

import (
	"fmt"
)

// SearchError is the structured error type shared across hybridcore
// components. It carries a stable code, a classification Kind, and
// enough context for callers to branch on failure mode without string
// matching.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_301_BACKEND_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Kind classifies the error per the taxonomy in codes.go.
	Kind Kind

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates whether the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code, enabling
// errors.Is() to work with SearchError.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error and returns it for
// chaining.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a SearchError with the given code and message. Kind,
// severity, and retryable are derived from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:      code,
		Message:   message,
		Kind:      kindFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SearchError from an existing error, using the error's
// message as the SearchError message. Returns nil if err is nil.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// EncodingError creates an encoding-kind error for a tokenize/embed
// failure (the query or document text itself could not be turned into
// index input).
func EncodingError(message string, cause error) *SearchError {
	return New(ErrCodeTokenizeFailed, message, cause)
}

// DimensionMismatchError creates an encoding-kind error for a vector
// whose width doesn't match a backend's configured dimensionality —
// the backend-side counterpart to EmbeddingShapeError, which covers
// the orchestrator's own shape check against a model's response.
func DimensionMismatchError(message string) *SearchError {
	return New(ErrCodeDimensionMismatch, message, nil)
}

// EmbeddingShapeError creates an encoding-kind error for an embedding
// model response that doesn't match the shape the orchestrator asked
// for — a wrong vector count or a dimension mismatch against the
// backend's configured width, as opposed to the model call itself
// failing (see ModelError).
func EmbeddingShapeError(message string, cause error) *SearchError {
	return New(ErrCodeEmbeddingShapeError, message, cause)
}

// FilterError creates a filter-kind error for a malformed filter tree
// (e.g. a pushdown compiler rejecting a shape it can't split).
func FilterError(message string, cause error) *SearchError {
	return New(ErrCodeFilterMalformed, message, cause)
}

// FilterUnsupportedError creates a filter-kind error for a filter node
// that is structurally invalid on its own terms (empty And/Or,
// childless Not) rather than merely unsupported by one backend.
func FilterUnsupportedError(message string) *SearchError {
	return New(ErrCodeFilterUnsupported, message, nil)
}

// FilterTypeMismatchError creates a filter-kind error for a leaf whose
// operator and value arity disagree (a scalar op given a list value,
// or vice versa).
func FilterTypeMismatchError(message string) *SearchError {
	return New(ErrCodeFilterTypeMismatch, message, nil)
}

// BackendError creates a backend-kind error for the backend being
// unreachable altogether, as opposed to a single read or write call
// failing (see BackendQueryError, BackendWriteError). Retryable; see
// Retry/RetryWithResult in retry.go.
func BackendError(message string, cause error) *SearchError {
	return New(ErrCodeBackendUnavailable, message, cause)
}

// BackendQueryError creates a backend-kind error for a failed read
// (Query/List/Get/Count). Retryable: a read can be repeated safely.
func BackendQueryError(message string, cause error) *SearchError {
	return New(ErrCodeBackendQuery, message, cause)
}

// BackendWriteError creates a backend-kind error for a failed write
// (Upsert/Delete). Not retryable by code — per isRetryableCode, a
// blind retry of a write risks a duplicate effect if the original call
// partially succeeded before failing; callers that know their backend's
// writes are idempotent (like orchestrator.go's own explicit Retry
// wrapping around Upsert) can still choose to retry regardless.
func BackendWriteError(message string, cause error) *SearchError {
	return New(ErrCodeBackendWrite, message, cause)
}

// ModelError creates a model-kind error for a failed or malformed
// model call.
func ModelError(message string, cause error) *SearchError {
	return New(ErrCodeModelCallFailed, message, cause)
}

// ModelUnavailableError creates a model-kind error for a model that
// cannot currently be reached at all — the circuit breaker guarding it
// is open, as opposed to a single call failing or returning a bad
// response.
func ModelUnavailableError(message string, cause error) *SearchError {
	return New(ErrCodeModelUnavailable, message, cause)
}

// TimeoutError creates a timeout-kind error for a search deadline
// exceeded before the pipeline finished.
func TimeoutError(message string, cause error) *SearchError {
	return New(ErrCodeSearchTimeout, message, cause)
}

// ContextCanceledError creates a timeout-kind error for a search
// aborted by explicit cancellation rather than a deadline passing —
// the caller gave up, as opposed to running out of time.
func ContextCanceledError(message string, cause error) *SearchError {
	return New(ErrCodeContextCancel, message, cause)
}

// RerankTimeoutError creates a timeout-kind error scoped to the
// reranking stage specifically, so callers can tell a slow
// cross-encoder apart from a slow overall search.
func RerankTimeoutError(message string, cause error) *SearchError {
	return New(ErrCodeRerankTimeout, message, cause)
}

// ConsistencyError creates a consistency-kind error for a BM25/backend
// index disagreement discovered by CheckConsistency.
func ConsistencyError(message string, cause error) *SearchError {
	return New(ErrCodeIndexDisagreement, message, cause)
}

// OrphanEntryError creates a consistency-kind error for a document
// present in one index but not the other.
func OrphanEntryError(message string) *SearchError {
	return New(ErrCodeOrphanEntry, message, nil)
}

// RebuildRequiredError creates a consistency-kind error marking the
// BM25 index as needing a full rebuild rather than a targeted repair.
func RebuildRequiredError(message string) *SearchError {
	return New(ErrCodeRebuildRequired, message, nil)
}

// IsRetryable reports whether err is a SearchError with Retryable set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SearchError); ok {
		return se.Retryable
	}
	return false
}

// IsFatal reports whether err is a SearchError with fatal severity.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*SearchError); ok {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SearchError, or "" if err is
// not one.
func GetCode(err error) string {
	if se, ok := err.(*SearchError); ok {
		return se.Code
	}
	return ""
}

// GetKind extracts the Kind from a SearchError, or "" if err is not one.
func GetKind(err error) Kind {
	if se, ok := err.(*SearchError); ok {
		return se.Kind
	}
	return ""
}
