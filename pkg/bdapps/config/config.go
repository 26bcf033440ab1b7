// Package config holds the credentials and endpoint settings shared by every
// bdapps service. A Config is built once, validated, and then passed by value;
// services never modify it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL               = "https://developer.bdapps.com"
	DefaultTimeoutSeconds        = 10
	DefaultSMSEncoding           = "0"
	DefaultDeliveryStatusRequest = "0"
	DefaultUSSDEncoding          = "440"
	DefaultPaymentInstrumentName = "Mobile Account"
)

// Config is the immutable credential/endpoint record.
type Config struct {
	// AppID and AppPassword are copied into every outbound request.
	AppID       string `mapstructure:"app_id" validate:"required"`
	AppPassword string `mapstructure:"app_password" validate:"required"`
	BaseURL     string `mapstructure:"base_url" validate:"required,url"`

	// TimeoutSeconds bounds each outbound call.
	TimeoutSeconds int `mapstructure:"timeout" validate:"gt=0"`

	// InsecureSkipVerify turns off TLS certificate verification. It is the
	// inverse of BDAPPS_VERIFY_SSL so that the zero value verifies.
	InsecureSkipVerify bool `mapstructure:"-"`

	SMS  SMSDefaults  `mapstructure:"sms"`
	USSD USSDDefaults `mapstructure:"ussd"`
	CaaS CaaSDefaults `mapstructure:"caas"`
}

// SMSDefaults are per-service values a caller may opt into with sms.DefaultOptions.
type SMSDefaults struct {
	SourceAddress         string `mapstructure:"source_address"`
	DeliveryStatusRequest string `mapstructure:"delivery_status_request"`
	Encoding              string `mapstructure:"encoding"` // 0 text, 240 binary, 245 unicode
}

type USSDDefaults struct {
	Encoding string `mapstructure:"encoding"` // 440 plain ASCII
}

type CaaSDefaults struct {
	PaymentInstrumentName string `mapstructure:"payment_instrument_name"`
}

// env maps config keys onto the BDAPPS_* variable names.
var env = map[string]string{
	"app_id":                       "BDAPPS_APP_ID",
	"app_password":                 "BDAPPS_APP_PASSWORD",
	"base_url":                     "BDAPPS_BASE_URL",
	"timeout":                      "BDAPPS_API_TIMEOUT",
	"verify_ssl":                   "BDAPPS_VERIFY_SSL",
	"sms.source_address":           "BDAPPS_SMS_SOURCE_ADDRESS",
	"sms.delivery_status_request":  "BDAPPS_SMS_DELIVERY_STATUS_REQUEST",
	"sms.encoding":                 "BDAPPS_SMS_ENCODING",
	"ussd.encoding":                "BDAPPS_USSD_ENCODING",
	"caas.payment_instrument_name": "BDAPPS_CAAS_PAYMENT_INSTRUMENT",
}

var validate = validator.New()

// Load reads envFiles (or ./.env when none are named and it exists), then the
// BDAPPS_* environment, and returns a validated Config.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeoutSeconds)
	v.SetDefault("verify_ssl", true)
	v.SetDefault("sms.source_address", "")
	v.SetDefault("sms.delivery_status_request", DefaultDeliveryStatusRequest)
	v.SetDefault("sms.encoding", DefaultSMSEncoding)
	v.SetDefault("ussd.encoding", DefaultUSSDEncoding)
	v.SetDefault("caas.payment_instrument_name", DefaultPaymentInstrumentName)
	v.SetDefault("app_id", "")
	v.SetDefault("app_password", "")

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode bdapps config: %w", err)
	}
	cfg.InsecureSkipVerify = !v.GetBool("verify_ssl")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills zero-value defaults (base URL, timeout, encodings, payment
// instrument) and checks the required credentials.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.SMS.Encoding == "" {
		c.SMS.Encoding = DefaultSMSEncoding
	}
	if c.SMS.DeliveryStatusRequest == "" {
		c.SMS.DeliveryStatusRequest = DefaultDeliveryStatusRequest
	}
	if c.USSD.Encoding == "" {
		c.USSD.Encoding = DefaultUSSDEncoding
	}
	if c.CaaS.PaymentInstrumentName == "" {
		c.CaaS.PaymentInstrumentName = DefaultPaymentInstrumentName
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid bdapps config: %w", err)
	}
	return nil
}

// New returns a Config for the given credentials with every other field at
// its default.
func New(appID, appPassword string) Config {
	return Config{
		AppID:          appID,
		AppPassword:    appPassword,
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		SMS: SMSDefaults{
			DeliveryStatusRequest: DefaultDeliveryStatusRequest,
			Encoding:              DefaultSMSEncoding,
		},
		USSD: USSDDefaults{Encoding: DefaultUSSDEncoding},
		CaaS: CaaSDefaults{PaymentInstrumentName: DefaultPaymentInstrumentName},
	}
}

// Credentials is embedded in every outbound request body.
type Credentials struct {
	ApplicationID string `json:"applicationId"`
	Password      string `json:"password"`
}

func (c Config) Credentials() Credentials {
	return Credentials{ApplicationID: c.AppID, Password: c.AppPassword}
}

// Timeout returns the per-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
