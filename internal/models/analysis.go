package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Upload is a binary file attached to a detection request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisRequest is built per user action and dispatched exactly once.
type AnalysisRequest struct {
	Operation Operation
	// Params maps wire field names to string, int, float64, bool or []string values.
	Params map[string]any
	// File is set only for detection-by-upload operations.
	File *Upload
}

// NewAnalysisRequest returns a request with an empty parameter map.
func NewAnalysisRequest(op Operation) *AnalysisRequest {
	return &AnalysisRequest{Operation: op, Params: make(map[string]any)}
}

// Set stores a parameter and returns the request for chaining.
func (r *AnalysisRequest) Set(name string, value any) *AnalysisRequest {
	if r.Params == nil {
		r.Params = make(map[string]any)
	}
	r.Params[name] = value
	return r
}

// String returns the parameter as trimmed text, or "" when absent.
func (r *AnalysisRequest) String(name string) string {
	v, ok := r.Params[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []string:
		return strings.TrimSpace(strings.Join(t, ","))
	default:
		return strings.TrimSpace(FormatParam(v))
	}
}

// HasFile reports whether a non-empty upload is attached.
func (r *AnalysisRequest) HasFile() bool {
	return r.File != nil && len(r.File.Data) > 0
}

// FormatParam renders a parameter value the way it is sent in a multipart form.
func FormatParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprint(t)
	}
}
