package service

import (
	"context"
	"fmt"
	"time"

	"blackboxscan/internal/messaging"
	"blackboxscan/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactInput is a submitted contact form.
type ContactInput struct {
	Name    string `form:"name" json:"name" validate:"required"`
	Email   string `form:"email" json:"email" validate:"required"`
	Subject string `form:"subject" json:"subject" validate:"required"`
	Message string `form:"message" json:"message" validate:"required"`
}

var contactMessages = map[string]string{
	"name":    "Please enter your name",
	"email":   "Please enter your email",
	"subject": "Please enter a subject",
	"message": "Please enter a message",
}

// ContactService forwards contact messages to the team inbox queue.
type ContactService interface {
	Send(ctx context.Context, in ContactInput) (*models.ContactMessage, error)
}

type contactService struct {
	publisher messaging.EventPublisher
	logger    *zap.Logger
}

// NewContactService creates a ContactService.
func NewContactService(publisher messaging.EventPublisher, logger *zap.Logger) ContactService {
	return &contactService{publisher: publisher, logger: logger.Named("ContactService")}
}

func (s *contactService) Send(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in = ContactInput{
		Name:    trimmed(in.Name),
		Email:   trimmed(in.Email),
		Subject: trimmed(in.Subject),
		Message: trimmed(in.Message),
	}
	if err := validateStruct(in, contactMessages); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishContactMessage(ctx, msg); err != nil {
		eventPublishFailuresTotal.WithLabelValues(messaging.EventContactMessage).Inc()
		return nil, fmt.Errorf("failed to deliver contact message: %w", err)
	}
	contactMessagesTotal.Inc()
	s.logger.Info("Contact message accepted", zap.String("message_id", msg.ID.String()))
	return msg, nil
}
