package uniview

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kpaulsen/vmsbridge/apierr"
)

const (
	loginPath = "/VIID/login"

	// maxLoginAttempts bounds the challenge-response retry loop.
	maxLoginAttempts = 3
	// loginBackoffBase is the first retry delay; it doubles per attempt.
	loginBackoffBase = 500 * time.Millisecond

	// safetyMargin for day-scale tokens absorbs clock skew and the gap
	// between issue and first use.
	safetyMargin = 10 * time.Minute

	// defaultTokenLifetime applies when the platform omits an expiry.
	defaultTokenLifetime = 24 * time.Hour
)

// challengeData is the payload of the initial login challenge. A non-empty
// AccessToken means the platform resumed an existing session.
type challengeData struct {
	AccessCode  string `json:"AccessCode"`
	AccessToken string `json:"AccessToken"`
	Expires     int64  `json:"Expires"`
}

// loginRequest is the second-step login payload.
type loginRequest struct {
	UserName       string `json:"UserName"`
	AccessCode     string `json:"AccessCode"`
	LoginSignature string `json:"LoginSignature"`
}

// loginData is the payload of a completed login.
type loginData struct {
	AccessToken string `json:"AccessToken"`
	Expires     int64  `json:"Expires"`
}

// loginSignature derives the challenge response:
// MD5(base64(username) + accessCode + MD5(password)), all hex lowercase.
func loginSignature(username, password, accessCode string) string {
	pwHash := md5.Sum([]byte(password))
	seed := base64.StdEncoding.EncodeToString([]byte(username)) +
		accessCode +
		hex.EncodeToString(pwHash[:])
	sig := md5.Sum([]byte(seed))
	return hex.EncodeToString(sig[:])
}

// Login runs the challenge-response exchange, retrying with exponential
// backoff up to maxLoginAttempts. On success it stores the session and
// starts the keep-alive.
func (c *Client) Login(ctx context.Context) error {
	var lastErr error
	backoff := loginBackoffBase

	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return apierr.FromTransport(ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
			c.logger.Debug().Int("attempt", attempt).Msg("Retrying Uniview login")
		}

		token, lifetime, err := c.loginOnce(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		c.mu.Lock()
		c.sess = session{
			token:     token,
			issuedAt:  time.Now(),
			expiresAt: time.Now().Add(lifetime - safetyMargin),
		}
		c.mu.Unlock()

		c.logger.Debug().Dur("lifetime", lifetime).Msg("Uniview login succeeded")
		c.startKeepAlive()
		return nil
	}

	return apierr.Newf(apierr.KindAuth, "uniview: login failed after %d attempts: %v", maxLoginAttempts, lastErr)
}

// loginOnce performs one challenge-response exchange and returns the token
// and its lifetime.
func (c *Client) loginOnce(ctx context.Context) (string, time.Duration, error) {
	challenge, err := c.fetchChallenge(ctx)
	if err != nil {
		return "", 0, err
	}

	// Session resumption: the challenge may already carry a valid token.
	if challenge.AccessToken != "" {
		return challenge.AccessToken, lifetimeOf(challenge.Expires), nil
	}
	if challenge.AccessCode == "" {
		return "", 0, apierr.New(apierr.KindAuth, "uniview: challenge carried no access code")
	}

	data, err := c.submitLogin(ctx, loginRequest{
		UserName:       c.cfg.Username,
		AccessCode:     challenge.AccessCode,
		LoginSignature: loginSignature(c.cfg.Username, c.cfg.Password, challenge.AccessCode),
	})
	if err != nil {
		return "", 0, err
	}
	if data.AccessToken == "" {
		return "", 0, apierr.New(apierr.KindAuth, "uniview: login response carried no token")
	}
	return data.AccessToken, lifetimeOf(data.Expires), nil
}

// fetchChallenge asks the platform for an access code.
func (c *Client) fetchChallenge(ctx context.Context) (*challengeData, error) {
	resp, err := c.dispatch(ctx, http.MethodGet, loginPath, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetching login challenge: %w", err)
	}

	var challenge challengeData
	if err := json.Unmarshal(resp.Data, &challenge); err != nil {
		return nil, apierr.Newf(apierr.KindAuth, "uniview: decoding challenge: %v", err)
	}
	return &challenge, nil
}

// submitLogin posts the signed login payload. The platform expects the
// payload serialized to JSON, then sent as a JSON-encoded *string* with a
// text/plain content type; a regular JSON object body is rejected.
func (c *Client) submitLogin(ctx context.Context, payload loginRequest) (*loginData, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, apierr.Newf(apierr.KindAuth, "uniview: encoding login payload: %v", err)
	}
	body, err := json.Marshal(string(inner))
	if err != nil {
		return nil, apierr.Newf(apierr.KindAuth, "uniview: encoding login payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, apierr.Newf(apierr.KindAuth, "uniview: building login request: %v", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apierr.FromTransport(err)
	}
	resp, err := decodeEnvelope(httpResp.StatusCode, raw)
	if err != nil {
		return nil, err
	}

	var data loginData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, apierr.Newf(apierr.KindAuth, "uniview: decoding login response: %v", err)
	}
	return &data, nil
}

// lifetimeOf converts a platform-declared expiry in seconds to a duration,
// falling back to the default day-scale lifetime.
func lifetimeOf(expires int64) time.Duration {
	if expires <= 0 {
		return defaultTokenLifetime
	}
	return time.Duration(expires) * time.Second
}
