package service_test

import (
	"context"
	"errors"
	"testing"

	"blackboxscan/internal/client"
	"blackboxscan/internal/dispatcher"
	"blackboxscan/internal/mocks"
	"blackboxscan/internal/models"
	"blackboxscan/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAnalysisService(t *testing.T) (service.AnalysisService, *mocks.MockAnalysisServiceClient) {
	mockClient := mocks.NewMockAnalysisServiceClient(t)
	return service.NewAnalysisService(dispatcher.New(mockClient, zap.NewNop()), zap.NewNop()), mockClient
}

func TestAnalysisService_Run(t *testing.T) {
	t.Run("normalizes successful response", func(t *testing.T) {
		svc, mockClient := newAnalysisService(t)
		mockClient.On("Do", mock.Anything, mock.Anything).
			Return(map[string]any{"detection": map[string]any{"status": "WATERMARK DETECTED", "confidence": 0.97}}, nil).Once()

		res := svc.Run(context.Background(), "text-detect", models.NewAnalysisRequest(models.OpTextDetect).Set("text", "abc"), "r1")

		require.Equal(t, models.KindTextDetection, res.Kind)
		assert.Equal(t, "WATERMARK DETECTED", res.TextDetection.Status)
	})

	t.Run("validation failure becomes error result", func(t *testing.T) {
		svc, _ := newAnalysisService(t)

		res := svc.Run(context.Background(), "freq-detect", models.NewAnalysisRequest(models.OpFreqDetect), "r2")

		require.Equal(t, models.KindError, res.Kind)
		assert.Equal(t, "Please upload an image first", res.Error.Message)
		assert.True(t, res.Error.Validation)
	})

	t.Run("service failure becomes error result", func(t *testing.T) {
		svc, mockClient := newAnalysisService(t)
		mockClient.On("Do", mock.Anything, mock.Anything).
			Return(nil, &client.ServiceError{Kind: client.FailureTransport, Err: errors.New("connection refused")}).Once()

		res := svc.Run(context.Background(), "text-generate", models.NewAnalysisRequest(models.OpTextGenerate).Set("prompt", "p"), "r3")

		require.Equal(t, models.KindError, res.Kind)
		assert.Equal(t, "Failed to watermark text", res.Error.Message)
		assert.Equal(t, models.ErrorCodeUpstream, res.Error.Code)
		assert.False(t, res.Error.Validation)
	})
}

func TestFailureMessage(t *testing.T) {
	statusErr := &client.ServiceError{Kind: client.FailureStatus, StatusCode: 502}

	tests := []struct {
		name string
		op   models.Operation
		err  error
		want string
		code models.ErrorCode
	}{
		{"validation", models.OpTextGenerate, &models.ValidationError{Field: "prompt", Message: "Please enter a prompt"}, "Please enter a prompt", models.ErrorCodeValidation},
		{"busy", models.OpTextGenerate, models.ErrBusy, "A request for this form is still running. Please wait for it to finish.", models.ErrorCodeBusy},
		{"text detect", models.OpTextDetect, statusErr, "Failed to analyze text", models.ErrorCodeUpstream},
		{"image", models.OpRobustGenerate, statusErr, "Failed to process image", models.ErrorCodeUpstream},
		{"scan shows reason", models.OpScanTopK, statusErr, "analysis service returned status 502", models.ErrorCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, code := service.FailureMessage(tt.op, tt.err)
			assert.Equal(t, tt.want, msg)
			assert.Equal(t, tt.code, code)
		})
	}
}
