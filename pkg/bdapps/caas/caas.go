// Package caas wraps the BDApps Charging-as-a-Service endpoints: balance
// queries, direct debits and payment instrument listing.
//
// Amounts are decimal.Decimal and are sent as JSON strings, so no precision is
// lost between the caller and the operator.
package caas

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

const (
	balanceQueryPath = "/caas/balance/query"
	directDebitPath  = "/caas/direct/debit"
	listPIPath       = "/caas/list/pi"

	// DefaultPIType lists every payment instrument type.
	DefaultPIType = "all"
)

type BalanceQueryRequest struct {
	config.Credentials
	SubscriberID          string `json:"subscriberId"`
	PaymentInstrumentName string `json:"paymentInstrumentName"`
}

type DirectDebitRequest struct {
	config.Credentials
	ExternalTrxID         string          `json:"externalTrxId"`
	SubscriberID          string          `json:"subscriberId"`
	Amount                decimal.Decimal `json:"amount"`
	PaymentInstrumentName string          `json:"paymentInstrumentName"`
}

type PaymentInstrumentListRequest struct {
	config.Credentials
	SubscriberID string `json:"subscriberId"`
	Type         string `json:"type"`
}

// Options are the overridable fields of a CaaS call.
type Options struct {
	PaymentInstrumentName string
	Type                  string
}

type Option func(*Options)

// WithPaymentInstrument overrides the configured payment instrument name.
func WithPaymentInstrument(name string) Option {
	return func(o *Options) { o.PaymentInstrumentName = name }
}

// WithType filters the payment instrument list (default "all").
func WithType(t string) Option {
	return func(o *Options) { o.Type = t }
}

// NewExternalTrxID returns a fresh merchant-side transaction ID for DirectDebit.
func NewExternalTrxID() string {
	return uuid.NewString()
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

func (s *Service) options(opts []Option) Options {
	o := Options{
		PaymentInstrumentName: s.cfg.CaaS.PaymentInstrumentName,
		Type:                  DefaultPIType,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.PaymentInstrumentName == "" {
		o.PaymentInstrumentName = config.DefaultPaymentInstrumentName
	}
	if o.Type == "" {
		o.Type = DefaultPIType
	}
	return o
}

// QueryBalance returns the subscriber's balance on the payment instrument.
func (s *Service) QueryBalance(ctx context.Context, subscriberID string, opts ...Option) (transport.Response, error) {
	o := s.options(opts)
	req := BalanceQueryRequest{
		Credentials:           s.cfg.Credentials(),
		SubscriberID:          subscriberID,
		PaymentInstrumentName: o.PaymentInstrumentName,
	}
	resp, err := s.poster.Post(ctx, balanceQueryPath, req)
	if err != nil {
		return nil, apierr.Transport("Balance query failed", err)
	}
	return resp, nil
}

// DirectDebit charges amount to the subscriber. externalTrxID must be unique
// per charge; see NewExternalTrxID.
func (s *Service) DirectDebit(ctx context.Context, externalTrxID, subscriberID string, amount decimal.Decimal, opts ...Option) (transport.Response, error) {
	o := s.options(opts)
	req := DirectDebitRequest{
		Credentials:           s.cfg.Credentials(),
		ExternalTrxID:         externalTrxID,
		SubscriberID:          subscriberID,
		Amount:                amount,
		PaymentInstrumentName: o.PaymentInstrumentName,
	}
	resp, err := s.poster.Post(ctx, directDebitPath, req)
	if err != nil {
		return nil, apierr.Transport("Direct debit failed", err)
	}
	return resp, nil
}

func (s *Service) PaymentInstrumentList(ctx context.Context, subscriberID string, opts ...Option) (transport.Response, error) {
	o := s.options(opts)
	req := PaymentInstrumentListRequest{
		Credentials:  s.cfg.Credentials(),
		SubscriberID: subscriberID,
		Type:         o.Type,
	}
	resp, err := s.poster.Post(ctx, listPIPath, req)
	if err != nil {
		return nil, apierr.Transport("Get payment instrument list failed", err)
	}
	return resp, nil
}
