package uniview

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastKeepAliveClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	client, err := NewClient(Config{
		Host:              u.Hostname(),
		Port:              port,
		Protocol:          "http",
		Username:          testUser,
		Password:          testPassword,
		KeepAliveInterval: 20 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestKeepAliveTouches(t *testing.T) {
	v := newVMS(t)
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := fastKeepAliveClient(t, srv)
	require.NoError(t, client.Login(context.Background()))

	require.Eventually(t, func() bool { return v.touches.Load() >= 2 },
		2*time.Second, 10*time.Millisecond, "keep-alive must touch periodically")

	client.Close()
	settled := v.touches.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, v.touches.Load(), "no touches after close")
}

func TestKeepAliveFailureTriggersRelogin(t *testing.T) {
	v := newVMS(t)
	v.rejectTouch = true
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := fastKeepAliveClient(t, srv)
	require.NoError(t, client.Login(context.Background()))
	require.Equal(t, int64(1), v.logins.Load())

	// Every touch fails, so the scheduler keeps re-logging in.
	require.Eventually(t, func() bool { return v.logins.Load() >= 2 },
		2*time.Second, 10*time.Millisecond, "failed touch must trigger re-login")
}

func TestTouchRacingCloseStaysStopped(t *testing.T) {
	v := newVMS(t)
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := fastKeepAliveClient(t, srv)
	require.NoError(t, client.Login(context.Background()))
	require.Equal(t, int64(1), v.logins.Load())

	client.Close()

	// A touch already in flight when Close ran: its session is gone, so it
	// fails, but it must neither re-login nor restart the scheduler.
	client.touch()

	assert.Equal(t, int64(1), v.logins.Load(), "no re-login after close")
	client.kaMu.Lock()
	defer client.kaMu.Unlock()
	assert.Nil(t, client.kaStop, "keep-alive must stay stopped after close")
}

func TestStartKeepAliveIdempotent(t *testing.T) {
	v := newVMS(t)
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := fastKeepAliveClient(t, srv)
	client.startKeepAlive()
	first := client.kaStop
	client.startKeepAlive()
	assert.Equal(t, first, client.kaStop, "starting while running is a no-op")

	client.stopKeepAlive()
	assert.Nil(t, client.kaStop)
	client.stopKeepAlive()
}
