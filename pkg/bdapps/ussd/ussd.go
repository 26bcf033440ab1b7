// Package ussd sends USSD session messages and validates incoming USSD callbacks.
package ussd

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/inbound"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

const sendPath = "/ussd/send"

// USSD operation codes. Outbound messages use the mt-* pair.
const (
	OperationContinue   = "mt-cont"
	OperationFinish     = "mt-fin"
	OperationMOInit     = "mo-init"
	OperationMOContinue = "mo-cont"
)

type SendRequest struct {
	config.Credentials
	Message            string           `json:"message"`
	SessionID          string           `json:"sessionId"`
	USSDOperation      string           `json:"ussdOperation"`
	DestinationAddress string           `json:"destinationAddress"`
	Encoding           *string          `json:"encoding,omitempty"`
	ChargingAmount     *decimal.Decimal `json:"chargingAmount,omitempty"`
}

type SendOption func(*SendRequest)

// WithOperation overrides the default mt-cont operation.
func WithOperation(op string) SendOption {
	return func(r *SendRequest) { r.USSDOperation = op }
}

// WithEncoding sets the encoding; an empty value leaves it unset.
func WithEncoding(enc string) SendOption {
	return func(r *SendRequest) {
		if enc == "" {
			r.Encoding = nil
			return
		}
		r.Encoding = &enc
	}
}

// WithChargingAmount charges the subscriber for this message.
func WithChargingAmount(amount decimal.Decimal) SendOption {
	return func(r *SendRequest) { r.ChargingAmount = &amount }
}

// DefaultOptions returns the configured USSD encoding as an explicit option.
func DefaultOptions(cfg config.Config) []SendOption {
	if cfg.USSD.Encoding == "" {
		return nil
	}
	return []SendOption{WithEncoding(cfg.USSD.Encoding)}
}

func NewSendRequest(cfg config.Config, message, sessionID, destinationAddress string, opts ...SendOption) SendRequest {
	req := SendRequest{
		Credentials:        cfg.Credentials(),
		Message:            message,
		SessionID:          sessionID,
		USSDOperation:      OperationContinue,
		DestinationAddress: destinationAddress,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	if req.USSDOperation == "" {
		req.USSDOperation = OperationContinue
	}
	return req
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

// Send posts one message into the USSD session sessionID.
func (s *Service) Send(ctx context.Context, message, sessionID, destinationAddress string, opts ...SendOption) (transport.Response, error) {
	req := NewSendRequest(s.cfg, message, sessionID, destinationAddress, opts...)
	resp, err := s.poster.Post(ctx, sendPath, req)
	if err != nil {
		return nil, apierr.Transport("USSD sending failed", err)
	}
	return resp, nil
}

// Receive validates an incoming USSD callback body.
func (s *Service) Receive(body []byte) (map[string]any, error) {
	return inbound.Validate(inbound.IncomingUSSD, body)
}
