package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"time"

	"blackboxscan/internal/models"

	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// FailureKind classifies a failed call.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
)

// ServiceError is returned by Do for every failed call. It unwraps to
// models.ErrTransport or models.ErrServer and to the underlying cause.
type ServiceError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case FailureStatus:
		return fmt.Sprintf("analysis service returned status %d", e.StatusCode)
	case FailureDecode:
		return fmt.Sprintf("analysis service returned malformed JSON: %v", e.Err)
	default:
		return fmt.Sprintf("analysis service request failed: %v", e.Err)
	}
}

func (e *ServiceError) Unwrap() []error {
	sentinel := models.ErrServer
	if e.Kind == FailureTransport {
		sentinel = models.ErrTransport
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

type analysisServiceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAnalysisServiceClient creates a client for the analysis service at baseURL.
func NewAnalysisServiceClient(baseURL string, timeout time.Duration, logger *zap.Logger) (AnalysisServiceClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for analysis service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("AnalysisServiceClient"),
	}, nil
}

func (c *analysisServiceClient) BaseURL() string { return c.baseURL }

// Do implements AnalysisServiceClient.
func (c *analysisServiceClient) Do(ctx context.Context, call Call) (map[string]any, error) {
	targetURL := c.baseURL + call.Path
	log := c.logger.With(
		zap.String("url", targetURL),
		zap.Stringer("encoding", call.Encoding),
		zap.String("request_id", call.RequestID),
	)

	body, contentType, err := encodeBody(call)
	if err != nil {
		log.Error("Failed to encode analysis request body", zap.Error(err))
		return nil, &ServiceError{Kind: FailureTransport, Err: fmt.Errorf("internal error encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, body)
	if err != nil {
		log.Error("Failed to create analysis HTTP request", zap.Error(err))
		return nil, &ServiceError{Kind: FailureTransport, Err: fmt.Errorf("internal error creating request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if call.RequestID != "" {
		req.Header.Set("X-Request-ID", call.RequestID)
	}

	log.Debug("Sending request to analysis service")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("HTTP request to analysis service failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, &ServiceError{Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("Failed to read analysis service response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &ServiceError{Kind: FailureTransport, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Received non-2xx status from analysis service",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncateBody(respBody)),
		)
		return nil, &ServiceError{Kind: FailureStatus, StatusCode: resp.StatusCode}
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		log.Warn("Failed to decode analysis service response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncateBody(respBody)),
			zap.Error(err),
		)
		return nil, &ServiceError{Kind: FailureDecode, StatusCode: resp.StatusCode, Err: err}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		// Arrays and scalars still reach the normalizer, which shows them raw.
		obj = map[string]any{"value": decoded}
	}

	log.Info("Analysis service call completed", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	return obj, nil
}

func encodeBody(call Call) (io.Reader, string, error) {
	if call.Encoding == EncodingJSON {
		if call.File != nil {
			return nil, "", errors.New("JSON requests cannot carry a file")
		}
		params := call.Params
		if params == nil {
			params = map[string]any{}
		}
		b, err := json.Marshal(params)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// Sorted keys keep bodies reproducible.
	keys := make([]string, 0, len(call.Params))
	for k := range call.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := call.Params[k]
		if v == nil {
			continue
		}
		if err := w.WriteField(k, models.FormatParam(v)); err != nil {
			return nil, "", err
		}
	}

	if call.File != nil {
		field := call.FileField
		if field == "" {
			field = "file"
		}
		filename := call.File.Filename
		if filename == "" {
			filename = "upload.png"
		}
		contentType := call.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(call.File.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func truncateBody(b []byte) []byte {
	const limit = 512
	if len(b) > limit {
		return b[:limit]
	}
	return b
}
