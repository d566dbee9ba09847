package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"blackboxscan/internal/models"

	"github.com/gin-gonic/gin"
)

type paramKind int

const (
	paramText paramKind = iota
	paramInt
	paramFloat
	paramBool
	paramList
	paramMethod
	paramConst
)

// paramSpec describes one wire parameter of an operation.
type paramSpec struct {
	Name    string
	Label   string
	Kind    paramKind
	Default string
	Min     float64
	Max     float64
}

const defaultScanModel = "gpt2"

// ScanModels lists the models offered by the Black Box Scan demo.
var ScanModels = []string{"gpt2", "bert-base-uncased"}

var operationParams = map[models.Operation][]paramSpec{
	models.OpTextGenerate: {
		{Name: "prompt", Kind: paramText},
		{Name: "max_new_tokens", Label: "Max new tokens", Kind: paramInt, Default: "150", Min: 1, Max: 1024},
		{Name: "top_k", Label: "Top-k", Kind: paramInt, Default: "50", Min: 1, Max: 1000},
		{Name: "temperature", Label: "Temperature", Kind: paramFloat, Default: "0.7", Min: 0, Max: 2},
	},
	models.OpTextDetect: {
		{Name: "text", Kind: paramText},
	},
	models.OpFreqGenerate: {
		{Name: "prompt", Kind: paramText},
		{Name: "method", Kind: paramMethod},
		{Name: "strength", Label: "Strength", Kind: paramFloat, Default: "0.1", Min: 0, Max: 1},
	},
	models.OpFreqDetect: {
		{Name: "method", Kind: paramMethod},
	},
	models.OpRobustGenerate: {
		{Name: "prompt", Kind: paramText},
	},
	models.OpRobustDetect: {},

	models.OpScanSentenceLikelihood: {
		{Name: "text", Kind: paramText},
	},
	models.OpScanTopK: {
		{Name: "text", Kind: paramText},
		{Name: "k", Label: "K", Kind: paramInt, Default: "5", Min: 1, Max: 20},
		{Name: "include_plot", Kind: paramBool},
	},
	models.OpScanEmbeddings: {
		{Name: "words", Kind: paramList},
		{Name: "model", Kind: paramText, Default: defaultScanModel},
	},
	models.OpScanAttention: {
		{Name: "sentence", Kind: paramText},
		{Name: "model", Kind: paramText, Default: defaultScanModel},
		{Name: "generative", Kind: paramConst, Default: "true"},
	},
	models.OpScanAttentionVisualize: {
		{Name: "sentence", Kind: paramText},
		{Name: "model", Kind: paramText, Default: defaultScanModel},
		{Name: "generative", Kind: paramConst, Default: "true"},
		{Name: "show_graph", Kind: paramBool},
	},
}

// usesUpload reports whether op takes an image upload.
func usesUpload(op models.Operation) bool {
	return op == models.OpFreqDetect || op == models.OpRobustDetect
}

// valueGetter returns a submitted value and whether the field was present.
type valueGetter func(name string) (string, bool)

// buildAnalysisRequest converts submitted values into a request. Blank
// values take the parameter default. Required fields are left to the
// dispatcher.
func buildAnalysisRequest(op models.Operation, get valueGetter, upload *models.Upload) (*models.AnalysisRequest, error) {
	specs, ok := operationParams[op]
	if !ok {
		return nil, models.ErrUnknownOperation
	}
	req := models.NewAnalysisRequest(op)

	for _, spec := range specs {
		raw, present := get(spec.Name)
		raw = strings.TrimSpace(raw)
		if raw == "" {
			raw = spec.Default
		}

		switch spec.Kind {
		case paramText:
			if raw != "" {
				req.Set(spec.Name, raw)
			}
		case paramInt:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &models.ValidationError{Field: spec.Name, Message: spec.Label + " must be a whole number"}
			}
			if float64(n) < spec.Min || float64(n) > spec.Max {
				return nil, &models.ValidationError{Field: spec.Name, Message: fmt.Sprintf("%s must be between %g and %g", spec.Label, spec.Min, spec.Max)}
			}
			req.Set(spec.Name, n)
		case paramFloat:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &models.ValidationError{Field: spec.Name, Message: spec.Label + " must be a number"}
			}
			if f < spec.Min || f > spec.Max {
				return nil, &models.ValidationError{Field: spec.Name, Message: fmt.Sprintf("%s must be between %g and %g", spec.Label, spec.Min, spec.Max)}
			}
			req.Set(spec.Name, f)
		case paramBool:
			req.Set(spec.Name, present && checked(raw))
		case paramConst:
			req.Set(spec.Name, checked(spec.Default))
		case paramList:
			req.Set(spec.Name, splitList(raw))
		case paramMethod:
			method, err := models.ParseFreqMethod(strings.ToLower(raw))
			if err != nil {
				return nil, &models.ValidationError{Field: spec.Name, Message: "Unknown watermarking method"}
			}
			req.Set(spec.Name, string(method))
		}
	}

	if usesUpload(op) {
		req.File = upload
	}
	return req, nil
}

func checked(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// splitList splits a comma separated list, dropping blank items.
func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// formValues reads url-encoded or multipart fields.
func formValues(c *gin.Context) valueGetter {
	return func(name string) (string, bool) {
		return c.GetPostForm(name)
	}
}

// jsonValues reads a decoded JSON object. Arrays are joined with commas.
func jsonValues(body map[string]any) valueGetter {
	return func(name string) (string, bool) {
		v, ok := body[name]
		if !ok || v == nil {
			return "", ok
		}
		switch t := v.(type) {
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				parts = append(parts, models.FormatParam(item))
			}
			return strings.Join(parts, ","), true
		default:
			return models.FormatParam(t), true
		}
	}
}

var errUploadTooLarge = errors.New("upload too large")

// readUpload returns the "file" part of a multipart request, or nil when no
// file was sent.
func (h *Handler) readUpload(c *gin.Context) (*models.Upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if fh.Size > h.maxUploadBytes {
		return nil, errUploadTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, errUploadTooLarge
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &models.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// uploadError converts readUpload failures into a validation error when the
// user can fix them.
func uploadError(err error) error {
	if errors.Is(err, errUploadTooLarge) {
		return &models.ValidationError{Field: "file", Message: "The image is too large"}
	}
	return err
}
