package dahua

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kpaulsen/vmsbridge/apierr"
)

const (
	publicKeyPath = "/evo-apigw/evo-oauth/1.0.0/oauth/public-key"
	tokenPath     = "/evo-apigw/evo-oauth/1.0.0/oauth/extend/token"

	// safetyMargin absorbs clock skew and in-flight latency when deciding
	// whether the current token is still usable.
	safetyMargin = 60 * time.Second
)

// publicKeyData is the payload of the public-key endpoint.
type publicKeyData struct {
	PublicKey string `json:"publicKey"`
}

// tokenData is the payload of the token endpoint.
type tokenData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// loginRequest is the token exchange payload. The platform expects the
// public key it handed out echoed back alongside the encrypted password.
type loginRequest struct {
	GrantType    string `json:"grant_type"`
	Username     string `json:"userName"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	PublicKey    string `json:"publicKey"`
}

// Login performs a full credential exchange and replaces the session.
// Safe to call concurrently; the most recent successful login wins.
func (c *Client) Login(ctx context.Context) error {
	keyPEM, err := c.fetchPublicKey(ctx)
	if err != nil {
		return fmt.Errorf("fetching public key: %w", err)
	}

	encrypted, err := encryptPassword(c.cfg.Password, keyPEM)
	if err != nil {
		// Encryption failure is fatal for this attempt, never retried here.
		return apierr.Newf(apierr.KindAuth, "dahua: encrypting password: %v", err)
	}

	resp, err := c.dispatch(ctx, http.MethodPost, tokenPath, nil, loginRequest{
		GrantType:    "password",
		Username:     c.cfg.Username,
		Password:     encrypted,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		PublicKey:    keyPEM,
	}, "")
	if err != nil {
		return fmt.Errorf("exchanging token: %w", err)
	}

	var tok tokenData
	if err := json.Unmarshal(resp.Data, &tok); err != nil {
		return apierr.Newf(apierr.KindAuth, "dahua: decoding token response: %v", err)
	}
	if tok.AccessToken == "" {
		return apierr.New(apierr.KindAuth, "dahua: token response carried no access token")
	}

	lifetime := time.Duration(tok.ExpiresIn) * time.Second
	c.mu.Lock()
	c.sess = session{
		token:     tok.AccessToken,
		issuedAt:  time.Now(),
		expiresAt: time.Now().Add(lifetime - safetyMargin),
	}
	c.mu.Unlock()

	c.logger.Debug().
		Dur("lifetime", lifetime).
		Msg("Dahua login succeeded")
	return nil
}

// fetchPublicKey asks the platform for its current RSA public key.
func (c *Client) fetchPublicKey(ctx context.Context) (string, error) {
	resp, err := c.dispatch(ctx, http.MethodGet, publicKeyPath, nil, nil, "")
	if err != nil {
		return "", err
	}

	var key publicKeyData
	if err := json.Unmarshal(resp.Data, &key); err != nil {
		return "", apierr.Newf(apierr.KindAuth, "dahua: decoding public key response: %v", err)
	}
	if key.PublicKey == "" {
		return "", apierr.New(apierr.KindAuth, "dahua: platform returned an empty public key")
	}
	return key.PublicKey, nil
}

// encryptPassword RSA-PKCS1v1.5-encrypts the plaintext password with the
// platform key (base64 DER, PKIX layout) and base64-encodes the result.
func encryptPassword(password, keyB64 string) (string, error) {
	der, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return "", fmt.Errorf("decoding key material: %w", err)
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return "", fmt.Errorf("parsing public key: %w", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("platform key is not RSA")
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	if err != nil {
		return "", fmt.Errorf("encrypting: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
