package experimenter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/experimenter-go/pkg/logger"
)

// fastRetry keeps the default number of attempts but does not wait between them.
var fastRetry = RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    []Option
		wantErr string
	}{
		{
			name: "defaults",
		},
		{
			name: "custom endpoints and http client",
			give: []Option{
				WithV1URL("http://localhost/v1"),
				WithV6URL("http://localhost/v6"),
				WithHTTPClient(&http.Client{Timeout: time.Second}),
			},
		},
		{
			name:    "empty endpoint",
			give:    []Option{WithV6URL("")},
			wantErr: "experimenter API URLs are required",
		},
		{
			name:    "nil http client",
			give:    []Option{WithHTTPClient(nil)},
			wantErr: "HTTP client is required",
		},
		{
			name:    "nil logger",
			give:    []Option{WithLogger(nil)},
			wantErr: "logger is required",
		},
		{
			name:    "nil clock",
			give:    []Option{WithClock(nil)},
			wantErr: "clock is required",
		},
		{
			name:    "zero attempts",
			give:    []Option{WithRetryPolicy(RetryPolicy{MaxAttempts: 0})},
			wantErr: "retry policy must allow at least one attempt",
		},
		{
			name:    "negative delay",
			give:    []Option{WithRetryPolicy(RetryPolicy{MaxAttempts: 1, Delay: -time.Second})},
			wantErr: "retry delay must not be negative, got -1s",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewClient(tt.give...)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				assert.Nil(t, client)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	client, err := NewClient()
	require.NoError(t, err)

	assert.Equal(t, DefaultV1URL, client.v1URL)
	assert.Equal(t, DefaultV6URL, client.v6URL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, RetryPolicy{MaxAttempts: 3, Delay: time.Second}, client.retryPolicy)
}

func TestClient_retryGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		failures     int32
		failStatus   int
		failBody     string
		wantAttempts int32
		wantErr      string
	}{
		{
			name:         "succeeds on first attempt",
			failures:     0,
			wantAttempts: 1,
		},
		{
			name:         "recovers from server errors",
			failures:     2,
			failStatus:   http.StatusServiceUnavailable,
			failBody:     "unavailable",
			wantAttempts: 3,
		},
		{
			name:         "recovers from invalid json",
			failures:     1,
			failStatus:   http.StatusOK,
			failBody:     "<html>",
			wantAttempts: 2,
		},
		{
			name:         "exhausts attempts",
			failures:     3,
			failStatus:   http.StatusInternalServerError,
			failBody:     "boom",
			wantAttempts: 3,
			wantErr:      "experimenter API returned status 500: boom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Accept"))

				if attempts.Add(1) <= tt.failures {
					w.WriteHeader(tt.failStatus)
					_, _ = w.Write([]byte(tt.failBody))

					return
				}
				_, _ = w.Write([]byte(`[{"slug": "a"}]`))
			}))
			defer server.Close()

			lggr, logs := logger.TestObserved(t, zapcore.InfoLevel)
			client, err := NewClient(WithRetryPolicy(fastRetry), WithLogger(lggr))
			require.NoError(t, err)

			got, err := client.retryGet(context.Background(), server.URL)
			assert.Equal(t, tt.wantAttempts, attempts.Load())

			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrTooManyRetries)
				require.ErrorContains(t, err, "too many retries for "+server.URL)
				require.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, `[{"slug": "a"}]`, string(got))
			if tt.failures > 0 {
				retries := logs.FilterMessage("Error fetching experiments. Retrying...").All()
				require.Len(t, retries, int(tt.failures))
				assert.Equal(t, server.URL, retries[0].ContextMap()["url"])
			}
		})
	}
}

func TestClient_retryGet_WaitsBetweenAttempts(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	delay := 20 * time.Millisecond
	client, err := NewClient(WithRetryPolicy(RetryPolicy{MaxAttempts: 3, Delay: delay}))
	require.NoError(t, err)

	start := time.Now()
	_, err = client.retryGet(context.Background(), server.URL)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTooManyRetries)
	assert.Equal(t, int32(3), attempts.Load())
	// two pauses for three attempts
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}

func TestClient_retryGet_ContextCanceled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(WithRetryPolicy(RetryPolicy{MaxAttempts: 3, Delay: time.Hour}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.retryGet(ctx, server.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTooManyRetries)
}

func TestClient_retryGet_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	_, err = client.retryGet(context.Background(), url)
	require.ErrorIs(t, err, ErrTooManyRetries)
	require.ErrorContains(t, err, "failed to execute request")
}
