// Package subscription manages subscriber subscriptions and parses the
// notifications BDApps sends when a subscription changes.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/inbound"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

const (
	statusPath = "/subscription/getstatus"
	sendPath   = "/subscription/send"

	version = "1.0"

	actionSubscribe   = "1"
	actionUnsubscribe = "0"
)

type StatusRequest struct {
	config.Credentials
	SubscriberID string `json:"subscriberId"`
}

type SendRequest struct {
	config.Credentials
	SubscriberID string `json:"subscriberId"`
	Version      string `json:"version"`
	Action       string `json:"action"`
}

// Notification is a validated subscription change pushed by BDApps.
type Notification struct {
	Frequency     string `json:"frequency"`
	Status        string `json:"status"`
	SubscriberID  string `json:"subscriberId"`
	ApplicationID string `json:"applicationId"`
	Timestamp     string `json:"timestamp"`
}

// ToMap returns the notification keyed by its wire names, with timeStamp
// spelled "timestamp".
func (n Notification) ToMap() map[string]string {
	return map[string]string{
		"frequency":     n.Frequency,
		"status":        n.Status,
		"subscriberId":  n.SubscriberID,
		"applicationId": n.ApplicationID,
		"timestamp":     n.Timestamp,
	}
}

type Service struct {
	cfg    config.Config
	poster transport.Poster
}

// NewService validates cfg, filling its defaults, so every request carries
// non-empty credentials.
func NewService(cfg config.Config, poster transport.Poster) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, poster: poster}, nil
}

// GetStatus returns the subscriptionStatus field, or "" when the API omits it.
func (s *Service) GetStatus(ctx context.Context, subscriberID string) (string, error) {
	req := StatusRequest{Credentials: s.cfg.Credentials(), SubscriberID: subscriberID}
	resp, err := s.poster.Post(ctx, statusPath, req)
	if err != nil {
		return "", apierr.Transport("Failed to get subscription status", err)
	}
	return resp.String("subscriptionStatus"), nil
}

func (s *Service) Subscribe(ctx context.Context, subscriberID string) (string, error) {
	return s.send(ctx, subscriberID, actionSubscribe, "Failed to subscribe")
}

func (s *Service) Unsubscribe(ctx context.Context, subscriberID string) (string, error) {
	return s.send(ctx, subscriberID, actionUnsubscribe, "Failed to unsubscribe")
}

func (s *Service) send(ctx context.Context, subscriberID, action, failure string) (string, error) {
	req := SendRequest{
		Credentials:  s.cfg.Credentials(),
		SubscriberID: subscriberID,
		Version:      version,
		Action:       action,
	}
	resp, err := s.poster.Post(ctx, sendPath, req)
	if err != nil {
		return "", apierr.Transport(failure, err)
	}
	return resp.String("subscriptionStatus"), nil
}

// HandleNotification validates a subscription notification body and returns
// it as a fixed-shape record.
func (s *Service) HandleNotification(body []byte) (Notification, error) {
	return ParseNotification(body)
}

// ParseNotification is HandleNotification without a Service.
func ParseNotification(body []byte) (Notification, error) {
	payload, err := inbound.Validate(inbound.SubscriptionNotification, body)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		Frequency:     text(payload["frequency"]),
		Status:        text(payload["status"]),
		SubscriberID:  text(payload["subscriberId"]),
		ApplicationID: text(payload["applicationId"]),
		Timestamp:     text(payload["timeStamp"]),
	}, nil
}

// text renders a decoded JSON value as a string. Numbers keep their digits.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
