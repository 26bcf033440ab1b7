// Package bdapps is a thin client for the BDApps developer platform.
//
// A Client is built from a validated config.Config and exposes one service per
// API area:
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	client, err := bdapps.New(cfg)
//	if err != nil { ... }
//	resp, err := client.SMS().Send(ctx, "Hello", []string{"tel:8801812345678"})
//
// Every call is a single synchronous POST; nothing is retried. Failures are
// returned as *apierr.Error.
package bdapps

import (
	"errors"
	"log/slog"

	"github.com/aradsms/bdappsapi/pkg/bdapps/caas"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/otp"
	"github.com/aradsms/bdappsapi/pkg/bdapps/sms"
	"github.com/aradsms/bdappsapi/pkg/bdapps/subscription"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
	"github.com/aradsms/bdappsapi/pkg/bdapps/ussd"
)

type options struct {
	httpClient transport.HTTPClient
	logger     *slog.Logger
	poster     transport.Poster
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sends requests through client instead of one built from the
// config timeout and TLS settings.
func WithHTTPClient(client transport.HTTPClient) Option {
	return func(o *options) { o.httpClient = client }
}

// WithLogger turns on debug logging of outbound calls.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPoster replaces the HTTP transport entirely. Mostly useful in tests.
func WithPoster(p transport.Poster) Option {
	return func(o *options) { o.poster = p }
}

// Client groups the per-area services. It is safe for concurrent use.
type Client struct {
	cfg          config.Config
	sms          *sms.Service
	ussd         *ussd.Service
	caas         *caas.Service
	otp          *otp.Service
	subscription *subscription.Service
}

// New validates cfg and builds a Client sharing one transport across services.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	poster := o.poster
	if poster == nil {
		poster = transport.New(cfg.BaseURL, cfg.Timeout(), !cfg.InsecureSkipVerify,
			transport.WithHTTPClient(o.httpClient),
			transport.WithLogger(o.logger),
		)
	}

	c := &Client{cfg: cfg}
	var errs [5]error
	c.sms, errs[0] = sms.NewService(cfg, poster)
	c.ussd, errs[1] = ussd.NewService(cfg, poster)
	c.caas, errs[2] = caas.NewService(cfg, poster)
	c.otp, errs[3] = otp.NewService(cfg, poster)
	c.subscription, errs[4] = subscription.NewService(cfg, poster)
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the validated configuration the client was built with.
func (c *Client) Config() config.Config { return c.cfg }

func (c *Client) SMS() *sms.Service                   { return c.sms }
func (c *Client) USSD() *ussd.Service                 { return c.ussd }
func (c *Client) CaaS() *caas.Service                 { return c.caas }
func (c *Client) OTP() *otp.Service                   { return c.otp }
func (c *Client) Subscription() *subscription.Service { return c.subscription }
