package loadsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSource_Fetch(t *testing.T) {
	source := NewMockSource(MockSourceConfig{Variance: 0.001})
	source.SetFleetLoad("fleet-1", 1200)

	sample, err := source.Fetch(context.Background(), "fleet-1")
	require.NoError(t, err)
	assert.InDelta(t, 1200, sample.PredictedLoad, 1)
	assert.WithinDuration(t, time.Now(), sample.Timestamp, time.Second)
}

func TestMockSource_UnknownFleet(t *testing.T) {
	source := NewMockSource(MockSourceConfig{})

	_, err := source.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrFleetNotFound)
}

func TestMockSource_InjectedFailure(t *testing.T) {
	source := NewMockSource(MockSourceConfig{})
	source.SetFleetLoad("fleet-1", 100)
	source.SetShouldFail(true, nil)

	_, err := source.Fetch(context.Background(), "fleet-1")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Error(t, source.HealthCheck(context.Background()))

	source.SetShouldFail(false, nil)
	_, err = source.Fetch(context.Background(), "fleet-1")
	assert.NoError(t, err)
}

func TestHTTPSource_Fetch(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/load/fleet-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fleet_id":"fleet-1","timestamp":"` + ts.Format(time.RFC3339) + `","requests":2500}`))
	}))
	defer server.Close()

	source := NewHTTPSource(HTTPSourceConfig{Endpoint: server.URL + "/load"})

	sample, err := source.Fetch(context.Background(), "fleet-1")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, sample.PredictedLoad)
	assert.True(t, sample.Timestamp.Equal(ts))
}

func TestHTTPSource_FetchErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
	}{
		{"fleet not found", http.StatusNotFound, "", ErrFleetNotFound},
		{"server error", http.StatusInternalServerError, "", ErrFetchFailed},
		{"malformed body", http.StatusOK, "{not json", ErrInvalidResponse},
		{"negative load", http.StatusOK, `{"fleet_id":"f","requests":-10}`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			source := NewHTTPSource(HTTPSourceConfig{Endpoint: server.URL + "/load"})

			_, err := source.Fetch(context.Background(), "fleet-1")
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestHTTPSource_MissingTimestampFallsBackToNow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fleet_id":"fleet-1","requests":100}`))
	}))
	defer server.Close()

	source := NewHTTPSource(HTTPSourceConfig{Endpoint: server.URL + "/load"})

	sample, err := source.Fetch(context.Background(), "fleet-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), sample.Timestamp, time.Second)
}

func TestResilientSource_RetriesBeforeFailing(t *testing.T) {
	inner := NewMockSource(MockSourceConfig{Variance: 0.001})
	inner.SetFleetLoad("fleet-1", 100)

	source := NewResilientSource(ResilientSourceConfig{
		Source:        inner,
		MaxFailures:   10,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})

	inner.SetShouldFail(true, errors.New("transient"))
	_, err := source.Fetch(context.Background(), "fleet-1")
	assert.Error(t, err)

	inner.SetShouldFail(false, nil)
	sample, err := source.Fetch(context.Background(), "fleet-1")
	require.NoError(t, err)
	assert.InDelta(t, 100, sample.PredictedLoad, 1)
}

func TestResilientSource_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	inner := NewMockSource(MockSourceConfig{})
	inner.SetShouldFail(true, errors.New("down"))

	source := NewResilientSource(ResilientSourceConfig{
		Source:        inner,
		MaxFailures:   2,
		Timeout:       time.Minute,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})

	ctx := context.Background()
	_, err := source.Fetch(ctx, "fleet-1")
	require.Error(t, err)
	_, err = source.Fetch(ctx, "fleet-1")
	require.Error(t, err)

	// Circuit is now open; the inner source is no longer consulted.
	inner.SetShouldFail(false, nil)
	inner.SetFleetLoad("fleet-1", 100)

	_, err = source.Fetch(ctx, "fleet-1")
	assert.Error(t, err)
}
