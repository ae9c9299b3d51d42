package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns a user-friendly error message. If debug is
// true, includes the error code for reference.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	se, ok := err.(*SearchError)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(se.Message)

	if debug {
		sb.WriteString(fmt.Sprintf("\n[%s]", se.Code))
	}

	return sb.String()
}

// FormatForCLI formats an error for CLI output using a concise format
// suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	se, ok := err.(*SearchError)
	if !ok {
		se = Wrap(ErrCodeModelBadResponse, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", se.Message))
	sb.WriteString(fmt.Sprintf("  Code: %s\n", se.Code))
	sb.WriteString(fmt.Sprintf("  Kind: %s\n", se.Kind))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Kind      string            `json:"kind"`
	Severity  string            `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
	Cause     string            `json:"cause,omitempty"`
	Retryable bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error, suitable for
// machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	se, ok := err.(*SearchError)
	if !ok {
		se = Wrap(ErrCodeModelBadResponse, err)
	}

	je := jsonError{
		Code:      se.Code,
		Message:   se.Message,
		Kind:      string(se.Kind),
		Severity:  string(se.Severity),
		Details:   se.Details,
		Retryable: se.Retryable,
	}

	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging, returning
// key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	se, ok := err.(*SearchError)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": se.Code,
		"message":    se.Message,
		"kind":       string(se.Kind),
		"severity":   string(se.Severity),
		"retryable":  se.Retryable,
	}

	if se.Cause != nil {
		result["cause"] = se.Cause.Error()
	}

	for k, v := range se.Details {
		result["detail_"+k] = v
	}

	return result
}
