package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuth},
		{"forbidden", http.StatusForbidden, KindAuth},
		{"not found", http.StatusNotFound, KindAPI},
		{"server error", http.StatusInternalServerError, KindAPI},
		{"bad request", http.StatusBadRequest, KindAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, "7", "denied", []byte(`{"code":7}`))
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, "7", err.VendorCode)
		})
	}

	t.Run("empty message falls back to status text", func(t *testing.T) {
		err := FromStatus(http.StatusNotFound, "", "", nil)
		assert.Equal(t, "Not Found", err.Message)
	})
}

func TestFromTransport(t *testing.T) {
	t.Run("deadline classifies as timeout", func(t *testing.T) {
		err := FromTransport(fmt.Errorf("request failed: %w", context.DeadlineExceeded))
		assert.Equal(t, KindTimeout, err.Kind)
		assert.True(t, IsTimeout(err))
		assert.True(t, IsNetwork(err), "timeout is a network subtype")
	})

	t.Run("connection refused classifies as network", func(t *testing.T) {
		err := FromTransport(errors.New("dial tcp 127.0.0.1:443: connect: connection refused"))
		assert.Equal(t, KindNetwork, err.Kind)
		assert.True(t, IsNetwork(err))
		assert.False(t, IsTimeout(err))
	})
}

func TestAsError(t *testing.T) {
	inner := New(KindAuth, "token expired")
	wrapped := fmt.Errorf("listing devices: %w", inner)

	ae, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindAuth, ae.Kind)
	assert.True(t, IsAuth(wrapped))
	assert.False(t, IsParameter(wrapped))

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with vendor code and status",
			err:  FromStatus(500, "0x8001", "internal failure", nil),
			want: "api error (http 500, code 0x8001): internal failure",
		},
		{
			name: "with status only",
			err:  FromStatus(401, "", "bad token", nil),
			want: "auth error (http 401): bad token",
		},
		{
			name: "plain",
			err:  New(KindParameter, "host is required"),
			want: "parameter error: host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
