// Package sms sends SMS through BDApps and validates the SMS callbacks
// (delivery reports and incoming messages) BDApps posts back.
package sms

import (
	"context"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/inbound"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

const sendPath = "/sms/send"

// SendRequest is the /sms/send body. Optional fields are sent only when set.
type SendRequest struct {
	config.Credentials
	Message               string   `json:"message"`
	DestinationAddresses  []string `json:"destinationAddresses"`
	SourceAddress         *string  `json:"sourceAddress,omitempty"`
	DeliveryStatusRequest *string  `json:"deliveryStatusRequest,omitempty"`
	Encoding              *string  `json:"encoding,omitempty"`
	Version               *string  `json:"version,omitempty"`
}

// SendOption sets one optional field of a SendRequest. Options given an empty
// value leave the field unset.
type SendOption func(*SendRequest)

func WithSourceAddress(addr string) SendOption {
	return func(r *SendRequest) { r.SourceAddress = optional(addr) }
}

// WithDeliveryStatusRequest asks for a delivery report ("1") or not ("0").
func WithDeliveryStatusRequest(v string) SendOption {
	return func(r *SendRequest) { r.DeliveryStatusRequest = optional(v) }
}

func WithEncoding(enc string) SendOption {
	return func(r *SendRequest) { r.Encoding = optional(enc) }
}

func WithVersion(v string) SendOption {
	return func(r *SendRequest) { r.Version = optional(v) }
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// DefaultOptions turns the configured SMS defaults into explicit options.
// Nothing is applied unless the caller passes these.
func DefaultOptions(cfg config.Config) []SendOption {
	return []SendOption{
		WithSourceAddress(cfg.SMS.SourceAddress),
		WithDeliveryStatusRequest(cfg.SMS.DeliveryStatusRequest),
		WithEncoding(cfg.SMS.Encoding),
	}
}

// NewSendRequest assembles a send body. A nil address list is sent as [].
func NewSendRequest(cfg config.Config, message string, addresses []string, opts ...SendOption) SendRequest {
	if addresses == nil {
		addresses = []string{}
	}
	req := SendRequest{
		Credentials:          cfg.Credentials(),
		Message:              message,
		DestinationAddresses: addresses,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

// Service is the SMS API client.
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

// Send delivers message to every address in addresses.
func (s *Service) Send(ctx context.Context, message string, addresses []string, opts ...SendOption) (transport.Response, error) {
	req := NewSendRequest(s.cfg, message, addresses, opts...)
	resp, err := s.poster.Post(ctx, sendPath, req)
	if err != nil {
		return nil, apierr.Transport("SMS sending failed", err)
	}
	return resp, nil
}

// SendTo delivers message to a single address.
func (s *Service) SendTo(ctx context.Context, message, address string, opts ...SendOption) (transport.Response, error) {
	return s.Send(ctx, message, []string{address}, opts...)
}

// ReceiveDeliveryReport validates a delivery report callback body.
func (s *Service) ReceiveDeliveryReport(body []byte) (map[string]any, error) {
	return inbound.Validate(inbound.DeliveryReport, body)
}

// ReceiveSMS validates an incoming SMS callback body.
func (s *Service) ReceiveSMS(body []byte) (map[string]any, error) {
	return inbound.Validate(inbound.IncomingSMS, body)
}
