package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/outagetrack/outage-service/internal/config"
	"github.com/outagetrack/outage-service/internal/events"
)

// NotificationService turns lifecycle events into outbound notifications.
// Delivery is stubbed: it only logs what would be sent.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle delivers the notifications for one event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("location_id", event.LocationID), zap.Any("payload", event.Payload))
	switch event.Type {
	case events.EventLocationReported, events.EventLocationAssigned:
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventLocationStatusChanged, events.EventLocationPriorityChanged:
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventLocationNoteAdded:
		n.sendEmailNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("location_id", event.LocationID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("location_id", event.LocationID),
		zap.String("event_type", string(event.Type)))
}
