package ical

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/config"
)

func TestClient_EventsForRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/calendar", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(crlf(testFeed)))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithLocation(time.UTC))

	start := time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 7, 8, 0, 0, 0, time.UTC)
	events, err := client.EventsForRange(context.Background(), start, end)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestClient_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.ics")
	require.NoError(t, os.WriteFile(path, []byte(crlf(testFeed)), 0o600))

	client := NewClient("file://"+path, WithLocation(time.UTC))

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	events, err := client.EventsForRange(context.Background(), day, day)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "offsite", events[0].ID)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"html page", http.StatusOK, "<!DOCTYPE html><html></html>", "received HTML"},
		{"not a calendar", http.StatusOK, "hello", "expected BEGIN:VCALENDAR"},
		{"bad status", http.StatusNotFound, "", "status 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
			_, err := client.EventsForRange(context.Background(), time.Now(), time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClientFromConfig(t *testing.T) {
	_, err := NewClientFromConfig(&config.Config{
		CalendarICSURL: config.NewSetting(config.EnvCalendarICSURL, ""),
	}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrNotConfigured))

	client, err := NewClientFromConfig(&config.Config{
		CalendarICSURL: config.NewSetting(config.EnvCalendarICSURL, "https://example.com/cal.ics"),
		Location:       time.UTC,
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cal.ics", client.source)
	assert.Equal(t, time.UTC, client.location)
}
