package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"blackboxscan/internal/client"
	"blackboxscan/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher maps an analysis request to exactly one outbound call and keeps
// at most one call in flight per form key. A second dispatch for a busy form
// is rejected with models.ErrBusy; nothing is queued, cancelled or merged.
type Dispatcher struct {
	client client.AnalysisServiceClient
	logger *zap.Logger

	mu       sync.Mutex
	inFlight map[string]uuid.UUID
}

// New creates a Dispatcher on top of an analysis service client.
func New(c client.AnalysisServiceClient, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		client:   c,
		logger:   logger.Named("Dispatcher"),
		inFlight: make(map[string]uuid.UUID),
	}
}

// Busy reports whether a call for formKey is outstanding.
func (d *Dispatcher) Busy(formKey string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[formKey]
	return ok
}

// Dispatch validates req, claims the in-flight slot of formKey and sends the
// request. Validation failures never reach the network.
func (d *Dispatcher) Dispatch(ctx context.Context, formKey string, req *models.AnalysisRequest, requestID string) (map[string]any, error) {
	log := d.logger.With(
		zap.String("operation", string(req.Operation)),
		zap.String("form_key", formKey),
		zap.String("request_id", requestID),
	)

	ep, ok := EndpointFor(req.Operation)
	if !ok {
		dispatchRejectedTotal.WithLabelValues("unknown_operation").Inc()
		return nil, models.ErrUnknownOperation
	}
	if err := Validate(req); err != nil {
		dispatchRejectedTotal.WithLabelValues("validation").Inc()
		log.Debug("Dispatch refused: validation failed", zap.Error(err))
		return nil, err
	}

	token, ok := d.acquire(formKey)
	if !ok {
		dispatchRejectedTotal.WithLabelValues("busy").Inc()
		log.Warn("Dispatch refused: form already has a request in flight")
		return nil, models.ErrBusy
	}
	defer d.release(formKey, token)

	call := client.Call{
		Path:      ep.Path,
		Encoding:  ep.Encoding,
		Params:    req.Params,
		RequestID: requestID,
	}
	if req.HasFile() {
		call.File = req.File
		call.FileField = fileField
	}

	dispatchesTotal.WithLabelValues(string(req.Operation)).Inc()
	start := time.Now()
	raw, err := d.client.Do(ctx, call)
	dispatchDuration.WithLabelValues(string(req.Operation)).Observe(time.Since(start).Seconds())
	if err != nil {
		kind := string(client.FailureTransport)
		var svcErr *client.ServiceError
		if errors.As(err, &svcErr) {
			kind = string(svcErr.Kind)
		}
		dispatchFailuresTotal.WithLabelValues(string(req.Operation), kind).Inc()
		log.Warn("Dispatch failed", zap.String("kind", kind), zap.Error(err))
		return nil, err
	}

	log.Debug("Dispatch completed", zap.Int("fields", len(raw)))
	return raw, nil
}

func (d *Dispatcher) acquire(formKey string) (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[formKey]; busy {
		return uuid.Nil, false
	}
	token := uuid.New()
	d.inFlight[formKey] = token
	return token, true
}

// release frees the slot only if it still holds token.
func (d *Dispatcher) release(formKey string, token uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[formKey] == token {
		delete(d.inFlight, formKey)
	}
}
