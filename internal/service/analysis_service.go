package service

import (
	"context"
	"errors"

	"blackboxscan/internal/client"
	"blackboxscan/internal/models"
	"blackboxscan/internal/normalizer"

	"go.uber.org/zap"
)

// Dispatcher sends one analysis request per form at a time.
type Dispatcher interface {
	Dispatch(ctx context.Context, formKey string, req *models.AnalysisRequest, requestID string) (map[string]any, error)
	Busy(formKey string) bool
}

// AnalysisService runs demo operations and always yields a renderable result.
type AnalysisService interface {
	// Run dispatches req and normalizes the response. Failures come back as
	// an error variant, never as a Go error.
	Run(ctx context.Context, formKey string, req *models.AnalysisRequest, requestID string) *models.AnalysisResult
	Busy(formKey string) bool
}

type analysisService struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(d Dispatcher, logger *zap.Logger) AnalysisService {
	return &analysisService{dispatcher: d, logger: logger.Named("AnalysisService")}
}

func (s *analysisService) Run(ctx context.Context, formKey string, req *models.AnalysisRequest, requestID string) *models.AnalysisResult {
	raw, err := s.dispatcher.Dispatch(ctx, formKey, req, requestID)
	if err != nil {
		msg, code := FailureMessage(req.Operation, err)
		return models.NewErrorResult(req.Operation, msg, code)
	}

	res := normalizer.Normalize(req.Operation, raw)
	if res.Kind == models.KindRaw {
		s.logger.Info("Response shape not recognized, showing raw output",
			zap.String("operation", string(req.Operation)),
			zap.String("request_id", requestID),
		)
	}
	return res
}

func (s *analysisService) Busy(formKey string) bool {
	return s.dispatcher.Busy(formKey)
}

// FailureMessage returns the user-facing text and the code of a dispatch error.
func FailureMessage(op models.Operation, err error) (string, models.ErrorCode) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Error(), models.ErrorCodeValidation
	case errors.Is(err, models.ErrValidation):
		return err.Error(), models.ErrorCodeValidation
	case errors.Is(err, models.ErrBusy):
		return "A request for this form is still running. Please wait for it to finish.", models.ErrorCodeBusy
	case errors.Is(err, models.ErrUnknownOperation):
		return "Unknown operation", models.ErrorCodeUnknownOperation
	}

	// Scan results surface the underlying reason; the watermarking demo
	// reports a generic failure.
	if op.IsScan() {
		var svcErr *client.ServiceError
		if errors.As(err, &svcErr) {
			return svcErr.Error(), models.ErrorCodeUpstream
		}
		return err.Error(), models.ErrorCodeUpstream
	}
	if op.IsText() {
		if op == models.OpTextDetect {
			return "Failed to analyze text", models.ErrorCodeUpstream
		}
		return "Failed to watermark text", models.ErrorCodeUpstream
	}
	return "Failed to process image", models.ErrorCodeUpstream
}
