package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range env {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BDAPPS_APP_ID", "APP_000001")
	t.Setenv("BDAPPS_APP_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "APP_000001", cfg.AppID)
	assert.Equal(t, "secret", cfg.AppPassword)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "", cfg.SMS.SourceAddress)
	assert.Equal(t, "0", cfg.SMS.DeliveryStatusRequest)
	assert.Equal(t, "0", cfg.SMS.Encoding)
	assert.Equal(t, "440", cfg.USSD.Encoding)
	assert.Equal(t, "Mobile Account", cfg.CaaS.PaymentInstrumentName)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BDAPPS_APP_ID", "APP_000002")
	t.Setenv("BDAPPS_APP_PASSWORD", "pw")
	t.Setenv("BDAPPS_BASE_URL", "https://api.example.com/")
	t.Setenv("BDAPPS_API_TIMEOUT", "30")
	t.Setenv("BDAPPS_VERIFY_SSL", "false")
	t.Setenv("BDAPPS_SMS_SOURCE_ADDRESS", "77000")
	t.Setenv("BDAPPS_SMS_DELIVERY_STATUS_REQUEST", "1")
	t.Setenv("BDAPPS_SMS_ENCODING", "245")
	t.Setenv("BDAPPS_USSD_ENCODING", "441")
	t.Setenv("BDAPPS_CAAS_PAYMENT_INSTRUMENT", "Bkash")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "77000", cfg.SMS.SourceAddress)
	assert.Equal(t, "1", cfg.SMS.DeliveryStatusRequest)
	assert.Equal(t, "245", cfg.SMS.Encoding)
	assert.Equal(t, "441", cfg.USSD.Encoding)
	assert.Equal(t, "Bkash", cfg.CaaS.PaymentInstrumentName)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BDAPPS_APP_ID=APP_FROM_FILE\nBDAPPS_APP_PASSWORD=filepw\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("BDAPPS_APP_ID")
		os.Unsetenv("BDAPPS_APP_PASSWORD")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "APP_FROM_FILE", cfg.AppID)
	assert.Equal(t, "filepw", cfg.AppPassword)
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bdapps config")
	assert.Contains(t, err.Error(), "AppID")
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := Config{AppID: "APP", AppPassword: "pw"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.TimeoutSeconds)
	assert.Equal(t, DefaultUSSDEncoding, cfg.USSD.Encoding)
	assert.Equal(t, DefaultPaymentInstrumentName, cfg.CaaS.PaymentInstrumentName)
	assert.False(t, cfg.InsecureSkipVerify, "zero value must keep TLS verification on")
}

func TestLoad_NamedEnvFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("BDAPPS_APP_ID", "APP")
	t.Setenv("BDAPPS_APP_PASSWORD", "pw")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load env file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no password", Config{AppID: "APP"}},
		{"bad url", Config{AppID: "APP", AppPassword: "pw", BaseURL: "not a url"}},
		{"negative timeout", Config{AppID: "APP", AppPassword: "pw", TimeoutSeconds: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New("APP", "pw")
	assert.False(t, cfg.InsecureSkipVerify)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Credentials{ApplicationID: "APP", Password: "pw"}, cfg.Credentials())
}
