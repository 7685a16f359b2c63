package dahua

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kpaulsen/vmsbridge/apierr"
)

const (
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultPort is the standard ICC gateway port.
	DefaultPort = 443
)

// Config holds the connection settings and account credentials.
type Config struct {
	Host          string
	Port          int
	Protocol      string // "https" (default) or "http"
	Username      string
	Password      string
	ClientID      string
	ClientSecret  string
	Timeout       time.Duration
	Debug         bool
	SkipTLSVerify bool
}

// session is the current token and its validity window. An expired session
// is equivalent to no session.
type session struct {
	token     string
	issuedAt  time.Time
	expiresAt time.Time
}

// valid reports whether the token can still be used at time now.
func (s session) valid(now time.Time) bool {
	return s.token != "" && now.Before(s.expiresAt)
}

// Client is a Dahua ICC client. Session state is owned by this instance
// and guarded by mu; credentials never change after construction.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu   sync.Mutex
	sess session
}

// Response is the normalized result of a successful request.
type Response struct {
	Status  int
	Data    json.RawMessage
	Message string
}

// envelope is the vendor response shape.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	ErrMsg  string          `json:"errMsg"`
	Data    json.RawMessage `json:"data"`
}

// NewClient validates the configuration and builds a client. Construction
// performs no network activity; the first request (or an explicit Login)
// acquires the token.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, apierr.New(apierr.KindParameter, "dahua: host is required")
	}
	if cfg.Username == "" {
		return nil, apierr.New(apierr.KindParameter, "dahua: username is required")
	}
	if cfg.Password == "" {
		return nil, apierr.New(apierr.KindParameter, "dahua: password is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, apierr.New(apierr.KindParameter, "dahua: client id and client secret are required")
	}

	if cfg.Protocol == "" {
		cfg.Protocol = "https"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := &http.Transport{}
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("%s://%s:%d", cfg.Protocol, cfg.Host, cfg.Port),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// ensureAuthenticated returns immediately when the session is valid,
// otherwise performs a login. Concurrent callers may each trigger a login;
// the session converges to the most recent successful one.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	valid := c.sess.valid(time.Now())
	c.mu.Unlock()
	if valid {
		return nil
	}
	return c.Login(ctx)
}

// invalidate drops the current session.
func (c *Client) invalidate() {
	c.mu.Lock()
	c.sess = session{}
	c.mu.Unlock()
}

// token returns the current session token, which may be empty.
func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.token
}

// Request exposes the authenticated request pipeline for endpoints without
// a typed wrapper. It follows the identical auth and error path as the
// typed wrappers.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, body any) (*Response, error) {
	return c.do(ctx, method, path, params, body, true)
}

// do runs the full pipeline: ensure a session, attach the bearer token,
// dispatch, classify. On 401/403 the session is invalidated and the request
// retried once after a fresh login.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, retryAuth bool) (*Response, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	resp, err := c.dispatch(ctx, method, path, params, body, c.token())
	if err != nil && retryAuth && apierr.IsAuth(err) {
		c.logger.Debug().Msg("Session rejected, re-authenticating")
		c.invalidate()
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		return c.do(ctx, method, path, params, body, false)
	}
	return resp, err
}

// dispatch performs one HTTP round trip with no auth lifecycle handling.
// Login endpoints pass an empty token.
func (c *Client) dispatch(ctx context.Context, method, path string, params url.Values, body any, token string) (*Response, error) {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apierr.Newf(apierr.KindParameter, "dahua: encoding request body: %v", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, payload)
	if err != nil {
		return nil, apierr.Newf(apierr.KindParameter, "dahua: building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "bearer "+token)
	}

	if c.cfg.Debug {
		c.logger.Debug().Str("method", method).Str("path", path).Msg("Dahua request")
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

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.ErrMsg != "" {
			return nil, apierr.FromStatus(resp.StatusCode, strconv.Itoa(env.Code), env.ErrMsg, raw)
		}
		return nil, apierr.FromStatus(resp.StatusCode, "", "", raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apierr.Newf(apierr.KindAPI, "dahua: decoding response: %v", err)
	}
	if !env.Success {
		// HTTP success does not imply business success; the success flag is
		// authoritative even when the body claims the success code.
		return nil, &apierr.Error{
			Kind:       apierr.KindAPI,
			Message:    env.ErrMsg,
			VendorCode: strconv.Itoa(env.Code),
			HTTPStatus: resp.StatusCode,
			Body:       raw,
		}
	}

	message := env.ErrMsg
	if message == "" {
		message = "success"
	}
	return &Response{
		Status:  resp.StatusCode,
		Data:    env.Data,
		Message: message,
	}, nil
}

// Close clears the in-memory session. Idempotent; safe on a client that
// never logged in.
func (c *Client) Close() {
	c.invalidate()
}
