package uniview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginSignatureKnownAnswer(t *testing.T) {
	// MD5(base64("admin") + "abc123" + MD5("admin123"))
	// = MD5("YWRtaW4=" + "abc123" + "0192023a7bbd73250516f069df18b500")
	sig := loginSignature("admin", "admin123", "abc123")
	assert.Equal(t, "6892938ff5ab70a78d8fe62b7724cfa0", sig)
}

func TestLoginSignatureDeterminism(t *testing.T) {
	s1 := loginSignature("admin", "admin123", "code-1")
	s2 := loginSignature("admin", "admin123", "code-1")
	assert.Equal(t, s1, s2, "same inputs must produce the same signature")

	assert.NotEqual(t, s1, loginSignature("admin", "admin123", "code-2"),
		"a different access code must change the signature")
	assert.NotEqual(t, s1, loginSignature("admin", "other", "code-1"),
		"a different password must change the signature")
	assert.NotEqual(t, s1, loginSignature("other", "admin123", "code-1"),
		"a different username must change the signature")
}

func TestLoginSignatureFormat(t *testing.T) {
	sig := loginSignature("admin", "pw", "code")
	assert.Len(t, sig, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", sig)
}

func TestLifetimeOf(t *testing.T) {
	assert.Equal(t, defaultTokenLifetime, lifetimeOf(0))
	assert.Equal(t, defaultTokenLifetime, lifetimeOf(-5))
	assert.Equal(t, lifetimeOf(3600).Hours(), 1.0)
}
