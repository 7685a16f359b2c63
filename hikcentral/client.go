package hikcentral

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/kpaulsen/vmsbridge/apierr"
)

const (
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultPort is the standard HikCentral OpenAPI gateway port.
	DefaultPort = 443

	// successCode is the business code reported on success.
	successCode = "0"
)

// Config holds the connection settings and AK/SK credentials.
type Config struct {
	Host          string
	Port          int
	Protocol      string // "https" (default) or "http"
	AppKey        string
	AppSecret     string
	Timeout       time.Duration
	Debug         bool
	SkipTLSVerify bool
}

// Client is a HikCentral OpenAPI client. Credentials are immutable for the
// life of the client; every request is signed independently.
type Client struct {
	baseURL    string
	signer     signer
	httpClient *http.Client
	logger     zerolog.Logger
	debug      bool
}

// Response is the normalized result of a successful request.
type Response struct {
	Status  int
	Data    json.RawMessage
	Message string
}

// envelope is the vendor response shape.
type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewClient validates the configuration and builds a client. No network
// activity happens here; a bad credential surfaces on the first request.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, apierr.New(apierr.KindParameter, "hikcentral: host is required")
	}
	if cfg.AppKey == "" {
		return nil, apierr.New(apierr.KindParameter, "hikcentral: app key is required")
	}
	if cfg.AppSecret == "" {
		return nil, apierr.New(apierr.KindParameter, "hikcentral: app secret is required")
	}

	protocol := cfg.Protocol
	if protocol == "" {
		protocol = "https"
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{}
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL: fmt.Sprintf("%s://%s:%d", protocol, cfg.Host, port),
		signer:  signer{appKey: cfg.AppKey, appSecret: cfg.AppSecret},
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
		debug:  cfg.Debug,
	}, nil
}

// Request exposes the signed request pipeline for endpoints without a typed
// wrapper. It follows the identical signing and error path as the wrappers.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, body any) (*Response, error) {
	return c.do(ctx, method, path, params, body, true)
}

// do signs and dispatches one request. On a 401/403 it re-signs with a fresh
// nonce and retries exactly once; the retry's classification is surfaced.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, retryAuth bool) (*Response, error) {
	signPath := path
	if len(params) > 0 {
		signPath = path + "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, apierr.Newf(apierr.KindParameter, "hikcentral: encoding request body: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+signPath, bytes.NewReader(payload))
	if err != nil {
		return nil, apierr.Newf(apierr.KindParameter, "hikcentral: building request: %v", err)
	}
	for k, v := range c.signer.signedHeaders(method, signPath, newNonce(), nowMillis()) {
		req.Header.Set(k, v)
	}

	if c.debug {
		c.logger.Debug().
			Str("method", method).
			Str("path", signPath).
			Msg("Signed HikCentral request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if retryAuth {
			c.logger.Warn().Int("status", resp.StatusCode).Msg("Signature rejected, retrying once")
			return c.do(ctx, method, path, params, body, false)
		}
		return nil, classifyHTTP(resp.StatusCode, raw)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyHTTP(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apierr.Newf(apierr.KindAPI, "hikcentral: decoding response: %v", err)
	}
	if env.Code != successCode {
		// HTTP success does not imply business success.
		return nil, &apierr.Error{
			Kind:       apierr.KindAPI,
			Message:    env.Msg,
			VendorCode: env.Code,
			HTTPStatus: resp.StatusCode,
			Body:       raw,
		}
	}

	return &Response{
		Status:  resp.StatusCode,
		Data:    env.Data,
		Message: env.Msg,
	}, nil
}

// classifyHTTP maps a non-success HTTP response, lifting the vendor code and
// message out of the body when it parses.
func classifyHTTP(status int, raw []byte) *apierr.Error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Code != "" {
		return apierr.FromStatus(status, env.Code, env.Msg, raw)
	}
	return apierr.FromStatus(status, "", "", raw)
}

// Close releases client resources. HikCentral keeps no session state, so
// this exists for symmetry with the other vendor clients; safe to call
// multiple times.
func (c *Client) Close() {}
