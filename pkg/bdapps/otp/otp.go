// Package otp requests and verifies subscription one-time passwords.
package otp

import (
	"context"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

const (
	requestPath = "/subscription/otp/request"
	verifyPath  = "/subscription/otp/verify"
)

type Request struct {
	config.Credentials
	SubscriberID        string            `json:"subscriberId"`
	ApplicationMetaData map[string]string `json:"applicationMetaData,omitempty"`
}

type VerifyRequest struct {
	config.Credentials
	ReferenceNo string `json:"referenceNo"`
	OTP         string `json:"otp"`
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

// Request sends an OTP to the subscriber. meta is forwarded as
// applicationMetaData only when it has entries.
func (s *Service) Request(ctx context.Context, subscriberID string, meta map[string]string) (transport.Response, error) {
	req := Request{
		Credentials:  s.cfg.Credentials(),
		SubscriberID: subscriberID,
	}
	if len(meta) > 0 {
		req.ApplicationMetaData = meta
	}
	resp, err := s.poster.Post(ctx, requestPath, req)
	if err != nil {
		return nil, apierr.Transport("OTP request failed", err)
	}
	return resp, nil
}

// Verify checks otp against the referenceNo returned by Request.
func (s *Service) Verify(ctx context.Context, referenceNo, otp string) (transport.Response, error) {
	req := VerifyRequest{
		Credentials: s.cfg.Credentials(),
		ReferenceNo: referenceNo,
		OTP:         otp,
	}
	resp, err := s.poster.Post(ctx, verifyPath, req)
	if err != nil {
		return nil, apierr.Transport("OTP verification failed", err)
	}
	return resp, nil
}
