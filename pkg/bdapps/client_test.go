package bdapps_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aradsms/bdappsapi/internal/testutil/mockposter"
	"github.com/aradsms/bdappsapi/pkg/bdapps"
	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/config"
	"github.com/aradsms/bdappsapi/pkg/bdapps/transport"
)

// fakeAPI records every request body by path and answers with the canned
// response for that path.
type fakeAPI struct {
	mu        sync.Mutex
	bodies    map[string]map[string]any
	responses map[string]string
}

func newFakeAPI(t *testing.T, responses map[string]string) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{bodies: map[string]map[string]any{}, responses: responses}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		api.mu.Lock()
		api.bodies[r.URL.Path] = body
		api.mu.Unlock()

		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"statusCode":"E1404","statusDetail":"Not found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(server.Close)
	return api, server
}

func (a *fakeAPI) body(path string) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[path]
}

func newClient(t *testing.T, baseURL string) *bdapps.Client {
	cfg := config.New("A1", "P1")
	cfg.BaseURL = baseURL
	client, err := bdapps.New(cfg)
	require.NoError(t, err)
	return client
}

func TestClient_SMSSend(t *testing.T) {
	api, server := newFakeAPI(t, map[string]string{
		"/sms/send": `{"statusCode":"S1000","requestId":"101","destinationResponses":[{"address":"8801XXXXXXXXX","statusCode":"S1000"}]}`,
	})
	client := newClient(t, server.URL)

	resp, err := client.SMS().SendTo(context.Background(), "Hello", "8801XXXXXXXXX")
	require.NoError(t, err)
	assert.Equal(t, "S1000", resp.String("statusCode"))

	assert.Equal(t, map[string]any{
		"applicationId":        "A1",
		"password":             "P1",
		"message":              "Hello",
		"destinationAddresses": []any{"8801XXXXXXXXX"},
	}, api.body("/sms/send"))
}

func TestClient_Subscribe(t *testing.T) {
	api, server := newFakeAPI(t, map[string]string{
		"/subscription/send": `{"statusCode":"S1000","subscriptionStatus":"ACTIVE"}`,
	})
	client := newClient(t, server.URL)

	status, err := client.Subscription().Subscribe(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", status)

	body := api.body("/subscription/send")
	assert.Equal(t, "S1", body["subscriberId"])
	assert.Equal(t, "1.0", body["version"])
	assert.Equal(t, "1", body["action"])
}

func TestClient_EveryRequestCarriesCredentials(t *testing.T) {
	ok := `{"statusCode":"S1000"}`
	api, server := newFakeAPI(t, map[string]string{
		"/sms/send":                 ok,
		"/ussd/send":                ok,
		"/caas/balance/query":       ok,
		"/caas/direct/debit":        ok,
		"/caas/list/pi":             ok,
		"/subscription/otp/request": ok,
		"/subscription/otp/verify":  ok,
		"/subscription/getstatus":   ok,
		"/subscription/send":        ok,
	})
	client := newClient(t, server.URL)
	ctx := context.Background()

	_, err := client.SMS().Send(ctx, "m", []string{"tel:1"})
	require.NoError(t, err)
	_, err = client.USSD().Send(ctx, "m", "s", "tel:1")
	require.NoError(t, err)
	_, err = client.CaaS().QueryBalance(ctx, "tel:1")
	require.NoError(t, err)
	_, err = client.CaaS().PaymentInstrumentList(ctx, "tel:1")
	require.NoError(t, err)
	_, err = client.OTP().Request(ctx, "tel:1", nil)
	require.NoError(t, err)
	_, err = client.OTP().Verify(ctx, "ref", "1234")
	require.NoError(t, err)
	_, err = client.Subscription().GetStatus(ctx, "tel:1")
	require.NoError(t, err)
	_, err = client.Subscription().Unsubscribe(ctx, "tel:1")
	require.NoError(t, err)

	for path := range api.responses {
		if path == "/caas/direct/debit" {
			continue
		}
		body := api.body(path)
		require.NotNil(t, body, path)
		assert.Equal(t, "A1", body["applicationId"], path)
		assert.Equal(t, "P1", body["password"], path)
	}
}

func TestClient_RemoteErrorCodeIsCopied(t *testing.T) {
	_, server := newFakeAPI(t, map[string]string{})
	client := newClient(t, server.URL)

	_, err := client.CaaS().QueryBalance(context.Background(), "tel:1")

	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "E1404", apiErr.Code)
	assert.Equal(t, "Not found", apiErr.Detail)
	assert.Equal(t, "Balance query failed: http 404: Not found", apiErr.Error())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := bdapps.New(config.Config{AppID: "A1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bdapps config")
}

func TestNew_WithPoster(t *testing.T) {
	poster := new(mockposter.MockPoster)
	poster.On("Post", mock.Anything, "/subscription/getstatus", mock.Anything).
		Return(transport.Response{"subscriptionStatus": "REGISTERED"}, nil).Once()

	client, err := bdapps.New(config.New("A1", "P1"), bdapps.WithPoster(poster))
	require.NoError(t, err)

	status, err := client.Subscription().GetStatus(context.Background(), "tel:1")
	require.NoError(t, err)
	assert.Equal(t, "REGISTERED", status)
	assert.Equal(t, "A1", client.Config().AppID)
	poster.AssertExpectations(t)
}

func TestNew_LiteralConfigVerifiesTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"statusCode":"S1000","subscriptionStatus":"ACTIVE"}`)
	}))
	t.Cleanup(server.Close)

	client, err := bdapps.New(config.Config{AppID: "A1", AppPassword: "P1", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Subscription().Subscribe(context.Background(), "tel:1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrTransport)
	assert.Contains(t, err.Error(), "certificate")

	insecure, err := bdapps.New(config.Config{AppID: "A1", AppPassword: "P1", BaseURL: server.URL, InsecureSkipVerify: true})
	require.NoError(t, err)

	status, err := insecure.Subscription().Subscribe(context.Background(), "tel:1")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", status)
}
