package uniview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpaulsen/vmsbridge/apierr"
)

const (
	testUser     = "admin"
	testPassword = "admin123"
	testCode     = "code-789"
	testToken    = "tok-uniview"
)

// vms simulates the platform: challenge handout, signed login with the
// text/plain quirk, keep-alive, and token-checked business endpoints.
type vms struct {
	t          *testing.T
	challenges atomic.Int64
	logins     atomic.Int64
	touches    atomic.Int64

	// failChallenges makes the first N challenge fetches return HTTP 500.
	failChallenges int64
	// resumeToken, when set, is returned directly from the challenge.
	resumeToken string
	// rejectTouch makes keep-alive touches fail with 401.
	rejectTouch bool

	business http.HandlerFunc
}

func newVMS(t *testing.T) *vms { return &vms{t: t} }

func (v *vms) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			n := v.challenges.Add(1)
			if n <= v.failChallenges {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			data := challengeData{AccessCode: testCode}
			if v.resumeToken != "" {
				data = challengeData{AccessToken: v.resumeToken, Expires: 86400}
			}
			writeEnvelope(w, 0, "", data)
		case http.MethodPost:
			v.handleLogin(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc(keepAlivePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if v.rejectTouch || r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		v.touches.Add(1)
		writeEnvelope(w, 0, "", nil)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if v.business != nil {
			v.business(w, r)
			return
		}
		writeEnvelope(w, 0, "", map[string]any{"ok": true})
	})

	return mux
}

func (v *vms) handleLogin(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	require.True(v.t, strings.HasPrefix(ct, "text/plain"), "login body must be text/plain, got %s", ct)

	// The body is a JSON-encoded string holding the JSON payload.
	var inner string
	require.NoError(v.t, json.NewDecoder(r.Body).Decode(&inner))
	var req loginRequest
	require.NoError(v.t, json.Unmarshal([]byte(inner), &req))

	want := loginSignature(testUser, testPassword, testCode)
	if req.UserName != testUser || req.AccessCode != testCode || req.LoginSignature != want {
		writeEnvelope(w, 103, "invalid login signature", nil)
		return
	}
	v.logins.Add(1)
	writeEnvelope(w, 0, "", loginData{AccessToken: testToken, Expires: 86400})
}

func writeEnvelope(w http.ResponseWriter, errCode int, errMsg string, data any) {
	raw, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]any{
		"ErrCode": errCode,
		"ErrMsg":  errMsg,
		"Data":    json.RawMessage(raw),
	})
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	client, err := NewClient(Config{
		Host:     u.Hostname(),
		Port:     port,
		Protocol: "http",
		Username: testUser,
		Password: testPassword,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestNewClientValidation(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{"missing host", Config{Username: "u", Password: "p"}, "host is required"},
		{"missing username", Config{Host: "h", Password: "p"}, "username is required"},
		{"missing password", Config{Host: "h", Username: "u"}, "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, logger)
			require.Error(t, err)
			assert.True(t, apierr.IsParameter(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoginChallengeResponse(t *testing.T) {
	v := newVMS(t)
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	require.NoError(t, client.Login(context.Background()))

	assert.Equal(t, int64(1), v.challenges.Load())
	assert.Equal(t, int64(1), v.logins.Load())
	assert.Equal(t, testToken, client.token())
	assert.True(t, client.sess.valid(time.Now()))
}

func TestLoginSessionResumption(t *testing.T) {
	v := newVMS(t)
	v.resumeToken = testToken
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	require.NoError(t, client.Login(context.Background()))

	assert.Equal(t, int64(1), v.challenges.Load())
	assert.Equal(t, int64(0), v.logins.Load(), "resumed session must skip the second round trip")
	assert.Equal(t, testToken, client.token())
}

func TestLoginRetriesWithBackoff(t *testing.T) {
	v := newVMS(t)
	v.failChallenges = 2
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, int64(3), v.challenges.Load(), "two failures then success")
}

func TestLoginAttemptCeiling(t *testing.T) {
	v := newVMS(t)
	v.failChallenges = 100
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	err := client.Login(context.Background())
	require.Error(t, err)
	assert.True(t, apierr.IsAuth(err), "exhausted login attempts surface as auth failure")
	assert.Equal(t, int64(maxLoginAttempts), v.challenges.Load())
	assert.Empty(t, client.token())
}

func TestAuthRejectionRetriedOnce(t *testing.T) {
	v := newVMS(t)
	var rejected atomic.Bool
	v.business = func(w http.ResponseWriter, r *http.Request) {
		if rejected.CompareAndSwap(false, true) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, 0, "", map[string]any{"ok": true})
	}
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	resp, err := client.Request(context.Background(), http.MethodGet, "/VIID/system/info", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int64(2), v.logins.Load(), "exactly one extra login between the attempts")
}

func TestRepeatedAuthRejectionSurfaces(t *testing.T) {
	v := newVMS(t)
	v.business = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	_, err := client.Request(context.Background(), http.MethodGet, "/VIID/system/info", nil, nil)
	require.Error(t, err)
	assert.True(t, apierr.IsAuth(err), "no retry loop past the single retry")
}

func TestBusinessFailureClassifiesAsAPI(t *testing.T) {
	v := newVMS(t)
	v.business = func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 105, "no such resource", nil)
	}
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	_, err := client.Request(context.Background(), http.MethodGet, "/VIID/system/info", nil, nil)
	require.Error(t, err)

	ae, ok := apierr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindAPI, ae.Kind)
	assert.Equal(t, "105", ae.VendorCode)
	assert.Equal(t, "no such resource", ae.Message)
}

func TestQueryDevicesStopsOnShortPage(t *testing.T) {
	var queries atomic.Int64
	v := newVMS(t)
	v.business = func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		var body struct {
			RecordStartNo int `json:"RecordStartNo"`
			PageRecordNum int `json:"PageRecordNum"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		// Pages 1-4 are full; page 5 is short. No total is ever reported.
		count := body.PageRecordNum
		if body.RecordStartNo >= 4*body.PageRecordNum {
			count = 30
		}
		devices := make([]Device, 0, count)
		for i := 0; i < count; i++ {
			devices = append(devices, Device{
				DeviceID: fmt.Sprintf("dev-%04d", body.RecordStartNo+i),
				Status:   1,
			})
		}
		writeEnvelope(w, 0, "", deviceList{Num: len(devices), DeviceList: devices})
	}
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	client := testClient(t, srv)
	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), queries.Load(), "must stop at the short page, far below the ceiling")
	assert.Len(t, devices, 4*defaultPageSize+30)
}

func TestCloseIdempotent(t *testing.T) {
	v := newVMS(t)
	srv := httptest.NewServer(v.handler())
	defer srv.Close()

	t.Run("after login", func(t *testing.T) {
		client := testClient(t, srv)
		require.NoError(t, client.Login(context.Background()))
		client.Close()
		assert.Empty(t, client.token())
		client.Close()
	})

	t.Run("never logged in", func(t *testing.T) {
		client := testClient(t, srv)
		client.Close()
		client.Close()
	})
}
