package dispatcher

import (
	"blackboxscan/internal/client"
	"blackboxscan/internal/models"
)

// Endpoint describes how an operation is sent to the analysis service.
type Endpoint struct {
	Path     string
	Encoding client.Encoding
	// Required is the parameter that must be non-blank, or "file" for uploads.
	Required string
	// Missing is the validation message shown when Required is blank.
	Missing string
}

// fileField is the multipart field name of detection uploads.
const fileField = "file"

var endpoints = map[models.Operation]Endpoint{
	models.OpTextGenerate:   {Path: "/text/generate", Encoding: client.EncodingMultipart, Required: "prompt", Missing: "Please enter a prompt"},
	models.OpTextDetect:     {Path: "/text/detect", Encoding: client.EncodingMultipart, Required: "text", Missing: "Please enter some text to analyze"},
	models.OpFreqGenerate:   {Path: "/freq/generate", Encoding: client.EncodingMultipart, Required: "prompt", Missing: "Please enter a prompt"},
	models.OpFreqDetect:     {Path: "/freq/detect", Encoding: client.EncodingMultipart, Required: fileField, Missing: "Please upload an image first"},
	models.OpRobustGenerate: {Path: "/robust/generate", Encoding: client.EncodingMultipart, Required: "prompt", Missing: "Please enter a prompt"},
	models.OpRobustDetect:   {Path: "/robust/detect", Encoding: client.EncodingMultipart, Required: fileField, Missing: "Please upload an image first"},

	models.OpScanSentenceLikelihood: {Path: "/analyze/sentence-likelihood", Encoding: client.EncodingJSON, Required: "text", Missing: "Please enter some text to analyze"},
	models.OpScanTopK:               {Path: "/analyze/top-k-tokens", Encoding: client.EncodingJSON, Required: "text", Missing: "Please enter input text"},
	models.OpScanEmbeddings:         {Path: "/analyze/embeddings", Encoding: client.EncodingJSON, Required: "words", Missing: "Please enter at least one word"},
	models.OpScanAttention:          {Path: "/analyze/attention", Encoding: client.EncodingJSON, Required: "sentence", Missing: "Please enter a sentence"},
	models.OpScanAttentionVisualize: {Path: "/analyze/attention/visualize", Encoding: client.EncodingJSON, Required: "sentence", Missing: "Please enter a sentence"},
}

// EndpointFor returns the endpoint of op.
func EndpointFor(op models.Operation) (Endpoint, bool) {
	ep, ok := endpoints[op]
	return ep, ok
}

// Validate checks the required field of req without touching the network.
func Validate(req *models.AnalysisRequest) error {
	ep, ok := EndpointFor(req.Operation)
	if !ok {
		return models.ErrUnknownOperation
	}
	if ep.Required == fileField {
		if !req.HasFile() {
			return &models.ValidationError{Field: fileField, Message: ep.Missing}
		}
		return nil
	}
	if req.String(ep.Required) == "" {
		return &models.ValidationError{Field: ep.Required, Message: ep.Missing}
	}
	return nil
}
