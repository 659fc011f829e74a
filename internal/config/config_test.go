package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.False(t, cfg.NotionToken.IsSet())
	assert.False(t, cfg.MeetingsDatabaseID.IsSet())
	assert.Equal(t, DefaultNotionAPIURL, cfg.NotionAPIURL)
	assert.Equal(t, DefaultCredentialsFile, cfg.GoogleCredentialsFile)
	assert.Equal(t, DefaultTokenFile, cfg.GoogleTokenFile)
	assert.Equal(t, DefaultGoogleCalendarID, cfg.GoogleCalendarID)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestFromLookup_Values(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvNotionToken:        "secret",
		EnvMeetingsDatabaseID: "  db-1  ",
		EnvNotionAPIURL:       "http://localhost:8080/v1/",
		EnvTimezone:           "Europe/Berlin",
	}))
	require.NoError(t, err)

	v, ok := cfg.MeetingsDatabaseID.Value()
	assert.True(t, ok)
	assert.Equal(t, "db-1", v)
	assert.Equal(t, EnvMeetingsDatabaseID, cfg.MeetingsDatabaseID.Key())
	assert.Equal(t, "http://localhost:8080/v1", cfg.NotionAPIURL)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
}

func TestFromLookup_EmptyValueIsUnset(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{EnvTaskDatabaseID: "   "}))
	require.NoError(t, err)
	assert.False(t, cfg.TaskDatabaseID.IsSet())
}

func TestFromLookup_InvalidTimezone(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{EnvTimezone: "Not/AZone"}))
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvNotionToken:        "secret",
		EnvMeetingsDatabaseID: "db",
	}))
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireIngest())

	err = cfg.RequireMeetings()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{EnvMeetingTemplatePage, EnvMeetingNotesParentID}, missing.Keys)
	assert.Contains(t, err.Error(), EnvMeetingTemplatePage)
}

func TestLoadWithEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meetsync.env")
	require.NoError(t, os.WriteFile(path, []byte("INFO_DUMP_PAGE_ID=dump-page\n"), 0600))

	t.Setenv(EnvInfoDumpPageID, "")
	os.Unsetenv(EnvInfoDumpPageID)

	cfg, err := LoadWithEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dump-page", cfg.InfoDumpPageID.String())
}

func TestLoadWithEnvFile_MissingExplicitFile(t *testing.T) {
	_, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
