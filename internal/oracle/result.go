// Package oracle invokes the external item/intent extraction service with
// bounded retries and normalizes its structured output.
package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"cafe_voice_backend/internal/conversation/domain"
)

// ResultItem is one extracted order line.
type ResultItem struct {
	Name            string   `json:"name"`
	PreparationArea string   `json:"preparationArea"`
	Customizations  []string `json:"customizations,omitempty"`
}

// Result is the validated output of one extraction call.
type Result struct {
	NextStage     domain.Stage
	Items         []ResultItem
	CustomerName  string
	CustomerPhone string
	ResponseText  string
}

// Error is the single failure type crossing the oracle boundary. The
// Transient flag records whether retries were attempted before giving up.
type Error struct {
	Reason    string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle: %s: %v", e.Reason, e.Err)
	}
	return "oracle: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

type wireResult struct {
	NextStage     string        `json:"nextStage"`
	Items         *[]ResultItem `json:"items"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	ResponseText  string        `json:"responseText"`
}

// parseResult decodes and validates a raw extractor payload. Any shape
// violation is reported as a non-retryable *Error.
func parseResult(raw string) (*Result, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, &Error{Reason: "empty response body"}
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, &Error{Reason: "malformed response body", Err: err}
	}

	stage, ok := domain.ParseStage(strings.TrimSpace(wire.NextStage))
	if !ok {
		return nil, &Error{Reason: fmt.Sprintf("unknown nextStage %q", wire.NextStage)}
	}
	if wire.Items == nil {
		return nil, &Error{Reason: "missing items array"}
	}
	if strings.TrimSpace(wire.ResponseText) == "" {
		return nil, &Error{Reason: "missing responseText"}
	}

	return &Result{
		NextStage:     stage,
		Items:         *wire.Items,
		CustomerName:  strings.TrimSpace(wire.CustomerName),
		CustomerPhone: strings.TrimSpace(wire.CustomerPhone),
		ResponseText:  strings.TrimSpace(wire.ResponseText),
	}, nil
}

// stripCodeFences removes a surrounding markdown code fence, which some
// models wrap around JSON output despite instructions.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
