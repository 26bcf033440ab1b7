// Package app validates BDApps webhook bodies and forwards them to NATS.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/inbound"
	"github.com/aradsms/bdappsapi/pkg/bdapps/subscription"
)

// NATS subjects for validated callbacks.
const (
	SubjectDeliveryReport           = "bdapps.dlr"
	SubjectIncomingSMS              = "bdapps.sms.incoming"
	SubjectIncomingUSSD             = "bdapps.ussd.incoming"
	SubjectSubscriptionNotification = "bdapps.subscription.notification"
)

// ErrPublish marks a callback that was valid but could not be queued.
var ErrPublish = errors.New("failed to publish callback")

// Publisher is the subset of the NATS client the service needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type CallbackService struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewCallbackService(publisher Publisher, logger *slog.Logger) *CallbackService {
	return &CallbackService{
		publisher: publisher,
		logger:    logger.With("service", "callback"),
	}
}

// Subject returns the NATS subject a kind is published on.
func Subject(kind inbound.Kind) string {
	switch kind {
	case inbound.DeliveryReport:
		return SubjectDeliveryReport
	case inbound.IncomingSMS:
		return SubjectIncomingSMS
	case inbound.IncomingUSSD:
		return SubjectIncomingUSSD
	case inbound.SubscriptionNotification:
		return SubjectSubscriptionNotification
	default:
		return ""
	}
}

// Process validates body as kind and publishes the validated record. Validation
// failures are returned as *apierr.Error; publish failures wrap ErrPublish.
func (s *CallbackService) Process(ctx context.Context, kind inbound.Kind, body []byte) (any, error) {
	callbacksReceivedCounter.WithLabelValues(kind.String()).Inc()

	record, err := validate(kind, body)
	if err != nil {
		reason := "unknown"
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			reason = apiErr.Kind.String()
		}
		callbacksRejectedCounter.WithLabelValues(kind.String(), reason).Inc()
		s.logger.WarnContext(ctx, "Rejected BDApps callback", "kind", kind.String(), "error", err)
		return nil, err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}

	subject := Subject(kind)
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		callbacksPublishedCounter.WithLabelValues(kind.String(), "error").Inc()
		s.logger.ErrorContext(ctx, "Failed to publish BDApps callback", "subject", subject, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	callbacksPublishedCounter.WithLabelValues(kind.String(), "success").Inc()
	s.logger.InfoContext(ctx, "BDApps callback published", "subject", subject)
	return record, nil
}

// validate returns the raw mapping for three kinds and the renamed
// notification record for subscription notifications.
func validate(kind inbound.Kind, body []byte) (any, error) {
	if kind == inbound.SubscriptionNotification {
		n, err := subscription.ParseNotification(body)
		if err != nil {
			return nil, err
		}
		return n.ToMap(), nil
	}
	return inbound.Validate(kind, body)
}
