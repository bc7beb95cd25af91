package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{
	MaxAttempts: 3,
	InitialWait: time.Millisecond,
	MaxWait:     5 * time.Millisecond,
	Multiplier:  2,
}

func ok() MockResponse { return MockResponse{Content: json.RawMessage(`{"ok":true}`)} }

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantCalls int
		wantErr   any
	}{
		{
			name:      "first try",
			responses: []MockResponse{ok()},
			wantCalls: 1,
		},
		{
			name: "outage then success",
			responses: []MockResponse{
				{Err: &ErrProviderUnavailable{Err: errors.New("503")}},
				{Err: &ErrRateLimit{Err: errors.New("429")}},
				ok(),
			},
			wantCalls: 3,
		},
		{
			name: "gives up after max attempts",
			responses: []MockResponse{
				{Err: &ErrProviderUnavailable{}},
				{Err: &ErrProviderUnavailable{}},
				{Err: &ErrProviderUnavailable{}},
				ok(),
			},
			wantCalls: 3,
			wantErr:   new(*ErrProviderUnavailable),
		},
		{
			name: "schema mismatch retried once",
			responses: []MockResponse{
				{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
				{Err: &ErrInvalidResponse{Err: errors.New("bad again")}},
				ok(),
			},
			wantCalls: 2,
			wantErr:   new(*ErrInvalidResponse),
		},
		{
			name:      "rejected is final",
			responses: []MockResponse{{Err: &ErrRejected{Status: 401, Err: errors.New("key")}}, ok()},
			wantCalls: 1,
			wantErr:   new(*ErrRejected),
		},
		{
			name:      "truncation is final",
			responses: []MockResponse{{Err: &ErrMaxTokensExceeded{}}, ok()},
			wantCalls: 1,
			wantErr:   new(*ErrMaxTokensExceeded),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			_, err := WithRetry(mock, fastRetry).Generate(context.Background(), Request{})

			assert.Equal(t, tt.wantCalls, mock.CallCount())
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorAs(t, err, tt.wantErr)
		})
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}}, ok())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}
	_, err := WithRetry(mock, slow).Generate(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ZeroAttemptsMeansOne(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}}, ok())
	_, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestBackoff(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}}

	assert.Equal(t, 3*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second}))

	for attempt, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond} {
		got := r.backoff(attempt, errors.New("x"))
		assert.InDelta(t, float64(base), float64(got), float64(base)*0.2+1, "attempt %d", attempt)
	}

	got := r.backoff(10, errors.New("x"))
	assert.LessOrEqual(t, got, 1200*time.Millisecond)
}

func TestFromStatus(t *testing.T) {
	h := map[string][]string{"Retry-After": {"2"}}

	var rl *ErrRateLimit
	require.ErrorAs(t, fromStatus(429, h, errors.New("x")), &rl)
	assert.Equal(t, 2*time.Second, rl.RetryAfter)

	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, fromStatus(408, nil, errors.New("x")), &unavailable)
	assert.ErrorAs(t, fromStatus(503, nil, errors.New("x")), &unavailable)
	assert.ErrorAs(t, fromStatus(0, nil, errors.New("x")), &unavailable)

	var rejected *ErrRejected
	assert.ErrorAs(t, fromStatus(403, nil, errors.New("x")), &rejected)

	assert.Zero(t, retryAfter(map[string][]string{"Retry-After": {"Wed, 21 Oct 2015 07:28:00 GMT"}}))
}
