package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/ical"
	"github.com/teemow/meetsync/internal/meetings"
	"github.com/teemow/meetsync/internal/notion"
)

type staticSource struct{}

func (staticSource) EventsForRange(context.Context, time.Time, time.Time) ([]meetings.RawEvent, error) {
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	env := map[string]string{
		config.EnvNotionToken:          "secret",
		config.EnvMeetingsDatabaseID:   "db",
		config.EnvMeetingTemplatePage:  "tpl",
		config.EnvMeetingNotesParentID: "parent",
	}
	cfg, err := config.FromLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func TestNewServerContext(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	assert.Error(t, err)

	sc, err := NewServerContext(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.False(t, sc.IsShutdown())
	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.Metrics())

	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())
}

func TestServerContext_Store(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig(t))
	require.NoError(t, err)

	store, err := sc.Store()
	require.NoError(t, err)
	assert.IsType(t, &notion.Client{}, store)

	again, err := sc.Store()
	require.NoError(t, err)
	assert.Same(t, store, again)
}

func TestServerContext_StoreNotConfigured(t *testing.T) {
	sc, err := NewServerContext(context.Background(), &config.Config{
		NotionToken: config.NewSetting(config.EnvNotionToken, ""),
	})
	require.NoError(t, err)

	_, err = sc.Store()
	assert.True(t, errors.Is(err, config.ErrNotConfigured))

	_, err = sc.Reconciler()
	assert.True(t, errors.Is(err, config.ErrNotConfigured))
}

func TestServerContext_Ingestor(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig(t), WithSource(staticSource{}))
	require.NoError(t, err)

	in, err := sc.Ingestor()
	require.NoError(t, err)
	assert.NotNil(t, in)

	rc, err := sc.Reconciler()
	require.NoError(t, err)
	assert.NotNil(t, rc)
}

func TestNewSource_ICS(t *testing.T) {
	cfg := testConfig(t)
	cfg.CalendarICSURL = config.NewSetting(config.EnvCalendarICSURL, "https://example.com/cal.ics")

	src, err := NewSource(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &ical.Client{}, src)
}

func TestNewSource_GoogleWithoutCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.GoogleCredentialsFile = t.TempDir() + "/missing.json"

	_, err := NewSource(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}
