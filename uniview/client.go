package uniview

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

	// DefaultPort is the standard VMS gateway port.
	DefaultPort = 8088

	// DefaultKeepAliveInterval is how often the background touch runs.
	DefaultKeepAliveInterval = 24 * time.Hour
)

// Config holds the connection settings and account credentials.
type Config struct {
	Host              string
	Port              int
	Protocol          string // "http" (default) or "https"
	Username          string
	Password          string
	Timeout           time.Duration
	Debug             bool
	SkipTLSVerify     bool
	KeepAliveInterval time.Duration
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

// Client is a Uniview VMS client. Session state and the keep-alive timer
// are owned by this instance; Close is the only cancellation point for the
// keep-alive.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu   sync.Mutex
	sess session

	kaMu     sync.Mutex
	kaStop   chan struct{}
	kaClosed bool
}

// Response is the normalized result of a successful request.
type Response struct {
	Status  int
	Data    json.RawMessage
	Message string
}

// envelope is the vendor response shape.
type envelope struct {
	ErrCode int             `json:"ErrCode"`
	ErrMsg  string          `json:"ErrMsg"`
	Data    json.RawMessage `json:"Data"`
}

// NewClient validates the configuration and builds a client. Construction
// performs no network activity.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, apierr.New(apierr.KindParameter, "uniview: host is required")
	}
	if cfg.Username == "" {
		return nil, apierr.New(apierr.KindParameter, "uniview: username is required")
	}
	if cfg.Password == "" {
		return nil, apierr.New(apierr.KindParameter, "uniview: password is required")
	}

	if cfg.Protocol == "" {
		cfg.Protocol = "http"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KeepAliveInterval == 0 {
		cfg.KeepAliveInterval = DefaultKeepAliveInterval
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
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, method, path, body, true)
}

// do runs the full pipeline: ensure a session, attach the token, dispatch,
// classify. On 401/403 the session is invalidated and the request retried
// once after a fresh login.
func (c *Client) do(ctx context.Context, method, path string, body any, retryAuth bool) (*Response, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	resp, err := c.dispatch(ctx, method, path, body, c.token())
	if err != nil && retryAuth && apierr.IsAuth(err) {
		c.logger.Debug().Msg("Session rejected, re-authenticating")
		c.invalidate()
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		return c.do(ctx, method, path, body, false)
	}
	return resp, err
}

// dispatch performs one HTTP round trip with no auth lifecycle handling.
func (c *Client) dispatch(ctx context.Context, method, path string, body any, token string) (*Response, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apierr.Newf(apierr.KindParameter, "uniview: encoding request body: %v", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, apierr.Newf(apierr.KindParameter, "uniview: building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.cfg.Debug {
		c.logger.Debug().Str("method", method).Str("path", path).Msg("Uniview request")
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
	return decodeEnvelope(resp.StatusCode, raw)
}

// decodeEnvelope classifies an HTTP response and unwraps the vendor
// envelope. A 2xx response with a non-zero ErrCode is a business failure.
func decodeEnvelope(status int, raw []byte) (*Response, error) {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, apierr.FromStatus(status, "", "", raw)
	}
	if status < 200 || status > 299 {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.ErrMsg != "" {
			return nil, apierr.FromStatus(status, strconv.Itoa(env.ErrCode), env.ErrMsg, raw)
		}
		return nil, apierr.FromStatus(status, "", "", raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apierr.Newf(apierr.KindAPI, "uniview: decoding response: %v", err)
	}
	if env.ErrCode != 0 {
		return nil, &apierr.Error{
			Kind:       apierr.KindAPI,
			Message:    env.ErrMsg,
			VendorCode: strconv.Itoa(env.ErrCode),
			HTTPStatus: status,
			Body:       raw,
		}
	}

	message := env.ErrMsg
	if message == "" {
		message = "succeed"
	}
	return &Response{
		Status:  status,
		Data:    env.Data,
		Message: message,
	}, nil
}

// Close stops the keep-alive and clears the in-memory session. Closing is
// terminal for the scheduler: a login racing with Close cannot restart it.
// Idempotent; safe on a client that never logged in.
func (c *Client) Close() {
	c.kaMu.Lock()
	c.kaClosed = true
	c.kaMu.Unlock()
	c.stopKeepAlive()
	c.invalidate()
}
