package client

import (
	"context"

	"blackboxscan/internal/models"
)

// Encoding selects the request body format.
type Encoding int

const (
	EncodingMultipart Encoding = iota
	EncodingJSON
)

func (e Encoding) String() string {
	if e == EncodingJSON {
		return "json"
	}
	return "multipart"
}

// Call describes one outbound request to the analysis service.
type Call struct {
	Path      string
	Encoding  Encoding
	Params    map[string]any
	File      *models.Upload
	FileField string
	RequestID string
}

// AnalysisServiceClient talks to the external analysis service.
type AnalysisServiceClient interface {
	// Do sends one POST and returns the decoded JSON object. Failures are
	// *ServiceError values. Do never retries.
	Do(ctx context.Context, call Call) (map[string]any, error)

	// BaseURL returns the configured service base URL.
	BaseURL() string
}
