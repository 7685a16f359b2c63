package hikcentral

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	contentTypeJSON = "application/json"
	acceptJSON      = "*/*"

	headerKey              = "x-ca-key"
	headerNonce            = "x-ca-nonce"
	headerTimestamp        = "x-ca-timestamp"
	headerSignature        = "x-ca-signature"
	headerSignatureHeaders = "x-ca-signature-headers"
)

// signer produces the x-ca-* authentication headers for one request.
// It is a pure computation over its inputs; nonce and timestamp are
// parameters so signing stays deterministic under test.
type signer struct {
	appKey    string
	appSecret string
}

// signedHeaders returns the full header set for a request, including the
// signature over the canonical string.
func (s signer) signedHeaders(method, path, nonce string, timestamp int64) map[string]string {
	custom := map[string]string{
		headerKey:       s.appKey,
		headerNonce:     nonce,
		headerTimestamp: fmt.Sprintf("%d", timestamp),
	}

	headers := map[string]string{
		"Content-Type": contentTypeJSON,
		"Accept":       acceptJSON,
	}
	for k, v := range custom {
		headers[k] = v
	}
	headers[headerSignatureHeaders] = signedHeaderNames(custom)
	headers[headerSignature] = s.sign(method, path, custom)
	return headers
}

// sign computes the base64 HMAC-SHA256 signature over the canonical string.
// The canonical string layout must match the gateway's verification exactly:
// method, content type, accept, the custom x-ca headers sorted by name, path.
func (s signer) sign(method, path string, custom map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteString("\n")
	b.WriteString(contentTypeJSON)
	b.WriteString("\n")
	b.WriteString(acceptJSON)
	b.WriteString("\n")

	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(custom[name])
		b.WriteString("\n")
	}

	b.WriteString(path)

	mac := hmac.New(sha256.New, []byte(s.appSecret))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signedHeaderNames lists the signed custom header names, sorted and
// comma-joined, for the x-ca-signature-headers header.
func signedHeaderNames(custom map[string]string) string {
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// newNonce returns a random per-request nonce.
func newNonce() string {
	return uuid.NewString()
}

// nowMillis returns the current signing timestamp.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
