package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/sender"
)

// NotificationRequest is one outbound email: rendered body, recipient,
// subject. The caller owns template rendering.
type NotificationRequest struct {
	UserID    uuid.UUID
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers a notification. A send failure must surface to the
// caller; checkout and settlement treat it as a hard failure.
type Notifier interface {
	Send(ctx context.Context, req NotificationRequest) error
}

type notificationService struct {
	repo        repository.NotificationRepository
	emailSender sender.EmailSender
	logger      *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, emailSender sender.EmailSender, logger *zap.Logger) Notifier {
	return &notificationService{
		repo:        repo,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (s *notificationService) Send(ctx context.Context, req NotificationRequest) error {
	result, err := s.emailSender.SendEmail(ctx, req.Recipient, req.Subject, req.Body)
	if err != nil {
		// Best-effort failure record; the send error is what propagates.
		failLog := &models.NotificationLog{
			UserID:    req.UserID,
			Recipient: req.Recipient,
			Subject:   req.Subject,
			Body:      req.Body,
			Channel:   models.ChannelEmail,
			Status:    models.NotificationFailed,
			Error:     err.Error(),
		}
		if logErr := s.repo.SaveLog(ctx, failLog); logErr != nil {
			s.logger.Error("failed to save notification failure log", zap.Error(logErr))
		}
		return err
	}

	s.logger.Info("notification sent",
		zap.String("recipient", req.Recipient),
		zap.String("subject", req.Subject),
		zap.String("message_id", result.MessageID),
	)

	return s.repo.SaveLog(ctx, &models.NotificationLog{
		UserID:    req.UserID,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
		Channel:   models.ChannelEmail,
		Status:    models.NotificationSent,
	})
}
