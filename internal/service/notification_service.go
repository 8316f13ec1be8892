package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/creativa-studio/lead-service/internal/config"
	"github.com/creativa-studio/lead-service/internal/events"
)

// NotificationService forwards lead events to the chat webhook. Delivery is
// best effort: failures are logged and never reach the submitter.
type NotificationService struct {
	dispatcher events.Dispatcher
	client     *http.Client
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		client:     &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to lead events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLeadCreated, n.handleLeadCreated)
	n.dispatcher.Subscribe(events.EventLeadStatusChanged, n.handleLeadStatusChanged)
}

func (n *NotificationService) handleLeadCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LeadCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for lead_created", zap.String("event_id", event.ID))
		return nil
	}

	phone := payload.Phone
	if phone == "" {
		phone = "N/A"
	}
	text := fmt.Sprintf("📥 New contact message:\n*Name:* %s\n*Email:* %s\n*Phone:* %s\n*Message:* %s",
		payload.Name, payload.Email, phone, payload.Message)

	n.sendWebhook(ctx, event, text)
	return nil
}

func (n *NotificationService) handleLeadStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("lead status changed",
		zap.String("lead_id", event.LeadID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event, text string) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		n.logger.Error("marshal webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("lead_id", event.LeadID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook delivery rejected",
			zap.String("lead_id", event.LeadID),
			zap.Int("status", resp.StatusCode))
		return
	}

	n.logger.Debug("webhook delivered",
		zap.String("lead_id", event.LeadID),
		zap.String("event_type", string(event.Type)))
}
