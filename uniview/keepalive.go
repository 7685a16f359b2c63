package uniview

import (
	"context"
	"net/http"
	"time"
)

const keepAlivePath = "/VIID/keepalive"

// startKeepAlive moves the scheduler from idle to running. Called on every
// successful login; starting while already running is a no-op. A closed
// client never starts again, even when a racing login lands after Close.
func (c *Client) startKeepAlive() {
	c.kaMu.Lock()
	defer c.kaMu.Unlock()
	if c.kaClosed || c.kaStop != nil {
		return
	}

	stop := make(chan struct{})
	c.kaStop = stop
	go c.keepAliveLoop(stop)
	c.logger.Debug().Dur("interval", c.cfg.KeepAliveInterval).Msg("Keep-alive started")
}

// stopKeepAlive moves the scheduler back to idle. Close is the only caller;
// request cancellation never reaches here.
func (c *Client) stopKeepAlive() {
	c.kaMu.Lock()
	defer c.kaMu.Unlock()
	if c.kaStop == nil {
		return
	}
	close(c.kaStop)
	c.kaStop = nil
	c.logger.Debug().Msg("Keep-alive stopped")
}

// keepAliveLoop touches the platform once per interval until stopped.
func (c *Client) keepAliveLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.touch()
		}
	}
}

// touch refreshes the session. A failed touch triggers a full re-login in
// place; there is no synchronous caller to surface the error to, so
// failures are only logged.
func (c *Client) touch() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	_, err := c.dispatch(ctx, http.MethodPut, keepAlivePath, nil, c.token())
	if err == nil {
		c.logger.Debug().Msg("Keep-alive touch succeeded")
		return
	}

	c.kaMu.Lock()
	closed := c.kaClosed
	c.kaMu.Unlock()
	if closed {
		// Close won the race against this touch; stay stopped.
		return
	}

	c.logger.Warn().Err(err).Msg("Keep-alive touch failed, re-authenticating")
	c.invalidate()
	if err := c.Login(ctx); err != nil {
		c.logger.Error().Err(err).Msg("Keep-alive re-login failed")
	}
}
