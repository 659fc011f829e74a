package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys read by Load.
const (
	EnvNotionToken          = "NOTION_TOKEN"
	EnvNotionAPIURL         = "NOTION_API_URL"
	EnvMeetingsDatabaseID   = "MEETINGS_DATABASE_ID"
	EnvMeetingTemplatePage  = "MEETING_TEMPLATE_PAGE_ID"
	EnvMeetingNotesParentID = "MEETING_NOTES_PARENT_ID"
	EnvInfoDumpPageID       = "INFO_DUMP_PAGE_ID"
	EnvTaskDatabaseID       = "TASK_DATABASE_ID"
	EnvDailyJournalParentID = "DAILY_JOURNAL_PARENT_ID"
	EnvCommandCenterPageID  = "COMMAND_CENTER_PAGE_ID"
	EnvGoogleCredentials    = "GOOGLE_CREDENTIALS_FILE"
	EnvGoogleToken          = "GOOGLE_TOKEN_FILE"
	EnvGoogleCalendarID     = "GOOGLE_CALENDAR_ID"
	EnvCalendarICSURL       = "CALENDAR_ICS_URL"
	EnvTimezone             = "MEETSYNC_TIMEZONE"
)

// Defaults applied when the corresponding key is unset.
const (
	DefaultNotionAPIURL      = "https://api.notion.com/v1"
	DefaultCredentialsFile   = "credentials.json"
	DefaultTokenFile         = "token.json"
	DefaultGoogleCalendarID  = "primary"
	DefaultEnvFile           = ".env"
	DefaultHTTPClientTimeout = 30 * time.Second
)

// ErrNotConfigured is the sentinel wrapped by every MissingError.
var ErrNotConfigured = errors.New("not configured")

// MissingError lists the environment keys a feature needs but did not get.
type MissingError struct {
	Keys []string
}

// Error implements the error interface
func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// Unwrap implements the errors.Unwrap interface
func (e *MissingError) Unwrap() error {
	return ErrNotConfigured
}

// Setting is an optional configuration value. The zero Setting is unset,
// which is distinct from a value that was set to something.
type Setting struct {
	key   string
	value string
	set   bool
}

// NewSetting returns a Setting that is set to value under key.
func NewSetting(key, value string) Setting {
	return Setting{key: key, value: value, set: value != ""}
}

// Value returns the value and whether it is set.
func (s Setting) Value() (string, bool) {
	return s.value, s.set
}

// IsSet reports whether the setting carries a value.
func (s Setting) IsSet() bool {
	return s.set
}

// String returns the value, or "" when unset.
func (s Setting) String() string {
	return s.value
}

// Key returns the environment key the setting was read from.
func (s Setting) Key() string {
	return s.key
}

// Config is the explicit configuration passed to every component at construction.
type Config struct {
	NotionToken          Setting
	NotionAPIURL         string
	MeetingsDatabaseID   Setting
	MeetingTemplatePage  Setting
	MeetingNotesParentID Setting
	InfoDumpPageID       Setting
	TaskDatabaseID       Setting
	DailyJournalParentID Setting
	CommandCenterPageID  Setting

	GoogleCredentialsFile string
	GoogleTokenFile       string
	GoogleCalendarID      string
	CalendarICSURL        Setting

	// Location is used to compute "today" and all-day event boundaries.
	Location *time.Location
}

// LookupFunc resolves an environment key. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// LoadWithEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set, then calls Load.
// A missing default .env file is not an error.
func LoadWithEnvFile(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return Load()
}

// FromLookup builds a Config from an arbitrary key lookup.
func FromLookup(lookup LookupFunc) (*Config, error) {
	get := func(key string) Setting {
		v, _ := lookup(key)
		return NewSetting(key, strings.TrimSpace(v))
	}
	orDefault := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		NotionToken:           get(EnvNotionToken),
		NotionAPIURL:          strings.TrimRight(orDefault(EnvNotionAPIURL, DefaultNotionAPIURL), "/"),
		MeetingsDatabaseID:    get(EnvMeetingsDatabaseID),
		MeetingTemplatePage:   get(EnvMeetingTemplatePage),
		MeetingNotesParentID:  get(EnvMeetingNotesParentID),
		InfoDumpPageID:        get(EnvInfoDumpPageID),
		TaskDatabaseID:        get(EnvTaskDatabaseID),
		DailyJournalParentID:  get(EnvDailyJournalParentID),
		CommandCenterPageID:   get(EnvCommandCenterPageID),
		GoogleCredentialsFile: orDefault(EnvGoogleCredentials, DefaultCredentialsFile),
		GoogleTokenFile:       orDefault(EnvGoogleToken, DefaultTokenFile),
		GoogleCalendarID:      orDefault(EnvGoogleCalendarID, DefaultGoogleCalendarID),
		CalendarICSURL:        get(EnvCalendarICSURL),
		Location:              time.Local,
	}

	if tz := orDefault(EnvTimezone, ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, tz, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// Require returns a *MissingError naming every unset setting, or nil.
func Require(settings ...Setting) error {
	var missing []string
	for _, s := range settings {
		if !s.IsSet() {
			missing = append(missing, s.Key())
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// RequireMeetings checks the settings the meeting-notes reconciler needs.
func (c *Config) RequireMeetings() error {
	return Require(c.NotionToken, c.MeetingsDatabaseID, c.MeetingTemplatePage, c.MeetingNotesParentID)
}

// RequireIngest checks the settings the calendar ingestion path needs.
func (c *Config) RequireIngest() error {
	return Require(c.NotionToken, c.MeetingsDatabaseID)
}
