// Package transport posts JSON request bodies to the BDApps API and decodes
// the JSON object it answers with.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBodyChars caps how much of a non-JSON error body ends up in an error message.
const maxErrorBodyChars = 200

// Response is a decoded API response, returned to callers verbatim.
type Response map[string]any

// String returns the named field when it is a JSON string, or "".
func (r Response) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Poster is the only thing the service packages need from the transport.
type Poster interface {
	Post(ctx context.Context, path string, body any) (Response, error)
}

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient replaces the client built from the timeout and TLS settings.
func WithHTTPClient(client HTTPClient) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithLogger enables debug records for each call. Without it the transport is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// HTTPTransport is the net/http implementation of Poster.
type HTTPTransport struct {
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
}

// New builds a transport for baseURL. Every request is bounded by timeout;
// verifySSL=false disables certificate verification.
func New(baseURL string, timeout time.Duration, verifySSL bool, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout, verifySSL),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.logger = t.logger.With("component", "bdapps_transport")
	return t
}

func newHTTPClient(timeout time.Duration, verifySSL bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if !verifySSL {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via BDAPPS_VERIFY_SSL=false.
		client.Transport = tr
	}
	return client
}

// Post sends body as JSON to baseURL+path. A non-2xx status yields *HTTPError;
// a 2xx body that is not a JSON object yields *DecodeError.
func (t *HTTPTransport) Post(ctx context.Context, path string, body any) (Response, error) {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := t.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	t.logger.DebugContext(ctx, "Sending request to BDApps", "path", path)

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.DebugContext(ctx, "BDApps request failed", "path", path, "error", err)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &HTTPError{StatusCode: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	t.logger.DebugContext(ctx, "Received response from BDApps", "path", path, "status_code", httpResp.StatusCode)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newHTTPError(httpResp.StatusCode, respBody)
	}

	decoded, err := decodeObject(respBody)
	if err != nil {
		return nil, &DecodeError{StatusCode: httpResp.StatusCode, Err: err}
	}
	return decoded, nil
}

// decodeObject decodes exactly one JSON object. Numbers stay json.Number so
// IDs and amounts above 2^53 keep their digits.
func decodeObject(data []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var decoded Response
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after response object")
	}
	if decoded == nil {
		return nil, errors.New("response is not a JSON object")
	}
	return decoded, nil
}

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	// APICode and APIDetail are the statusCode/statusDetail of a JSON error body.
	APICode   string
	APIDetail string
	Body      string
	Err       error
}

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status}
	var parsed struct {
		StatusCode   string `json:"statusCode"`
		StatusDetail string `json:"statusDetail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		e.APICode = parsed.StatusCode
		e.APIDetail = parsed.StatusDetail
	} else if raw := strings.TrimSpace(string(body)); len(raw) <= maxErrorBodyChars {
		e.Body = raw
	}
	return e
}

func (e *HTTPError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("http %d: %v", e.StatusCode, e.Err)
	case e.APIDetail != "":
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.APIDetail)
	case e.Body != "":
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("http %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ErrorCode prefers the API statusCode and falls back to the HTTP status.
func (e *HTTPError) ErrorCode() string {
	if e.APICode != "" {
		return e.APICode
	}
	return strconv.Itoa(e.StatusCode)
}

func (e *HTTPError) ErrorDetail() string { return e.APIDetail }

// DecodeError is a 2xx answer whose body is not a JSON object.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
