package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Values holds scalar configuration values.
// Fields ending in *Set (e.g., HeadlessSet) track whether that field was explicitly
// set in config. This allows distinguishing explicit false/0 from "not set", enabling
// proper merge behavior where local config can override global config with zero values.
type Values struct {
	BaseURL  string // deployment under test, e.g. https://studio.forgekit.dev
	Email    string // dashboard login email
	Password string // dashboard login password
	APIToken string // bearer token for the backend API (seeding, cleanup)

	Headless           bool
	HeadlessSet        bool // tracks if headless was explicitly set
	SlowMoMs           int
	SlowMoMsSet        bool // tracks if slow_mo_ms was explicitly set
	ActionTimeoutMs    int
	ActionTimeoutMsSet bool
	NavTimeoutMs       int
	NavTimeoutMsSet    bool

	DownloadsDir string // where the browser drops exported artifacts
	TemplateRepo string // git repo holding template app projects for seeding
	TemplateRef  string // branch or tag of the template repo

	AgentScriptsDir string // directory with agent mock scripts (yaml)

	CleanupPrefix         string // app-name prefix that marks harness-owned apps
	CleanupMaxAgeHours    int
	CleanupMaxAgeHoursSet bool

	NotifyChannels      []string
	NotifyOnError       bool
	NotifyOnErrorSet    bool
	NotifyOnComplete    bool
	NotifyOnCompleteSet bool
	SlackToken          string
	SlackChannel        string
	TelegramToken       string
	TelegramChat        string
	WebhookURLs         []string
}

// valuesLoader implements config parsing with embedded filesystem fallback.
type valuesLoader struct {
	embedFS embed.FS
}

// newValuesLoader creates a new valuesLoader with the given embedded filesystem.
func newValuesLoader(embedFS embed.FS) *valuesLoader {
	return &valuesLoader{embedFS: embedFS}
}

// Load loads values from config files with fallback chain: local → global → embedded.
// localConfigPath and globalConfigPath are full paths to config files (not directories).
func (vl *valuesLoader) Load(localConfigPath, globalConfigPath string) (Values, error) {
	// start with embedded defaults
	embedded, err := vl.parseValuesFromEmbedded()
	if err != nil {
		return Values{}, fmt.Errorf("parse embedded defaults: %w", err)
	}

	// parse global config if exists
	global, err := vl.parseValuesFromFile(globalConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse global config: %w", err)
	}

	// parse local config if exists
	local, err := vl.parseValuesFromFile(localConfigPath)
	if err != nil {
		return Values{}, fmt.Errorf("parse local config: %w", err)
	}

	// merge: embedded → global → local (local wins)
	result := embedded
	result.mergeFrom(&global)
	result.mergeFrom(&local)

	return result, nil
}

// parseValuesFromFile reads a config file and parses it into Values.
// returns empty Values (not error) if file doesn't exist or contains only comments/whitespace.
// this enables fallback to embedded defaults for files that are commented templates.
func (vl *valuesLoader) parseValuesFromFile(path string) (Values, error) {
	if path == "" {
		return Values{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil
		}
		return Values{}, fmt.Errorf("read config %s: %w", path, err)
	}

	// strip comments and check if anything remains
	stripped := stripComments(string(data))
	if strings.TrimSpace(stripped) == "" {
		return Values{}, nil
	}

	return vl.parseValuesFromBytes(data)
}

// parseValuesFromEmbedded parses values from the embedded defaults/config file.
func (vl *valuesLoader) parseValuesFromEmbedded() (Values, error) {
	data, err := vl.embedFS.ReadFile("defaults/config")
	if err != nil {
		return Values{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	return vl.parseValuesFromBytes(data)
}

// parseValuesFromBytes parses configuration from a byte slice into Values.
//
//nolint:gocyclo // flat key-by-key parsing; splitting would hurt readability
func (vl *valuesLoader) parseValuesFromBytes(data []byte) (Values, error) {
	// ignoreInlineComment: true prevents # from being treated as inline comment marker
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return Values{}, fmt.Errorf("parse config: %w", err)
	}

	var values Values
	section := cfg.Section("") // default section (no section header)

	// deployment settings
	if key, err := section.GetKey("base_url"); err == nil {
		values.BaseURL = key.String()
	}
	if key, err := section.GetKey("email"); err == nil {
		values.Email = key.String()
	}
	if key, err := section.GetKey("password"); err == nil {
		values.Password = key.String()
	}
	if key, err := section.GetKey("api_token"); err == nil {
		values.APIToken = key.String()
	}

	// browser settings
	if key, err := section.GetKey("headless"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid headless: %w", boolErr)
		}
		values.Headless = val
		values.HeadlessSet = true
	}
	if key, err := section.GetKey("slow_mo_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid slow_mo_ms: %w", intErr)
		}
		if val < 0 {
			return Values{}, fmt.Errorf("invalid slow_mo_ms: must be non-negative, got %d", val)
		}
		values.SlowMoMs = val
		values.SlowMoMsSet = true
	}
	if key, err := section.GetKey("action_timeout_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid action_timeout_ms: %w", intErr)
		}
		if val < 0 {
			return Values{}, fmt.Errorf("invalid action_timeout_ms: must be non-negative, got %d", val)
		}
		values.ActionTimeoutMs = val
		values.ActionTimeoutMsSet = true
	}
	if key, err := section.GetKey("nav_timeout_ms"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid nav_timeout_ms: %w", intErr)
		}
		if val < 0 {
			return Values{}, fmt.Errorf("invalid nav_timeout_ms: must be non-negative, got %d", val)
		}
		values.NavTimeoutMs = val
		values.NavTimeoutMsSet = true
	}

	// artifact settings
	if key, err := section.GetKey("downloads_dir"); err == nil {
		values.DownloadsDir = key.String()
	}
	if key, err := section.GetKey("template_repo"); err == nil {
		values.TemplateRepo = key.String()
	}
	if key, err := section.GetKey("template_ref"); err == nil {
		values.TemplateRef = key.String()
	}
	if key, err := section.GetKey("agent_scripts_dir"); err == nil {
		values.AgentScriptsDir = key.String()
	}

	// cleanup settings
	if key, err := section.GetKey("cleanup_prefix"); err == nil {
		values.CleanupPrefix = key.String()
	}
	if key, err := section.GetKey("cleanup_max_age_hours"); err == nil {
		val, intErr := key.Int()
		if intErr != nil {
			return Values{}, fmt.Errorf("invalid cleanup_max_age_hours: %w", intErr)
		}
		if val < 0 {
			return Values{}, fmt.Errorf("invalid cleanup_max_age_hours: must be non-negative, got %d", val)
		}
		values.CleanupMaxAgeHours = val
		values.CleanupMaxAgeHoursSet = true
	}

	// notification settings
	if key, err := section.GetKey("notify_channels"); err == nil {
		values.NotifyChannels = splitList(key.String())
	}
	if key, err := section.GetKey("notify_on_error"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid notify_on_error: %w", boolErr)
		}
		values.NotifyOnError = val
		values.NotifyOnErrorSet = true
	}
	if key, err := section.GetKey("notify_on_complete"); err == nil {
		val, boolErr := key.Bool()
		if boolErr != nil {
			return Values{}, fmt.Errorf("invalid notify_on_complete: %w", boolErr)
		}
		values.NotifyOnComplete = val
		values.NotifyOnCompleteSet = true
	}
	if key, err := section.GetKey("slack_token"); err == nil {
		values.SlackToken = key.String()
	}
	if key, err := section.GetKey("slack_channel"); err == nil {
		values.SlackChannel = key.String()
	}
	if key, err := section.GetKey("telegram_token"); err == nil {
		values.TelegramToken = key.String()
	}
	if key, err := section.GetKey("telegram_chat"); err == nil {
		values.TelegramChat = key.String()
	}
	if key, err := section.GetKey("webhook_urls"); err == nil {
		values.WebhookURLs = splitList(key.String())
	}

	return values, nil
}

// mergeFrom merges non-zero values from other into v. for bool and int fields
// the *Set flag decides, so an explicit false/0 in a later layer still wins.
func (v *Values) mergeFrom(other *Values) {
	if other.BaseURL != "" {
		v.BaseURL = other.BaseURL
	}
	if other.Email != "" {
		v.Email = other.Email
	}
	if other.Password != "" {
		v.Password = other.Password
	}
	if other.APIToken != "" {
		v.APIToken = other.APIToken
	}
	if other.HeadlessSet {
		v.Headless = other.Headless
		v.HeadlessSet = true
	}
	if other.SlowMoMsSet {
		v.SlowMoMs = other.SlowMoMs
		v.SlowMoMsSet = true
	}
	if other.ActionTimeoutMsSet {
		v.ActionTimeoutMs = other.ActionTimeoutMs
		v.ActionTimeoutMsSet = true
	}
	if other.NavTimeoutMsSet {
		v.NavTimeoutMs = other.NavTimeoutMs
		v.NavTimeoutMsSet = true
	}
	if other.DownloadsDir != "" {
		v.DownloadsDir = other.DownloadsDir
	}
	if other.TemplateRepo != "" {
		v.TemplateRepo = other.TemplateRepo
	}
	if other.TemplateRef != "" {
		v.TemplateRef = other.TemplateRef
	}
	if other.AgentScriptsDir != "" {
		v.AgentScriptsDir = other.AgentScriptsDir
	}
	if other.CleanupPrefix != "" {
		v.CleanupPrefix = other.CleanupPrefix
	}
	if other.CleanupMaxAgeHoursSet {
		v.CleanupMaxAgeHours = other.CleanupMaxAgeHours
		v.CleanupMaxAgeHoursSet = true
	}
	if len(other.NotifyChannels) > 0 {
		v.NotifyChannels = other.NotifyChannels
	}
	if other.NotifyOnErrorSet {
		v.NotifyOnError = other.NotifyOnError
		v.NotifyOnErrorSet = true
	}
	if other.NotifyOnCompleteSet {
		v.NotifyOnComplete = other.NotifyOnComplete
		v.NotifyOnCompleteSet = true
	}
	if other.SlackToken != "" {
		v.SlackToken = other.SlackToken
	}
	if other.SlackChannel != "" {
		v.SlackChannel = other.SlackChannel
	}
	if other.TelegramToken != "" {
		v.TelegramToken = other.TelegramToken
	}
	if other.TelegramChat != "" {
		v.TelegramChat = other.TelegramChat
	}
	if len(other.WebhookURLs) > 0 {
		v.WebhookURLs = other.WebhookURLs
	}
}

// splitList splits a comma-separated config value into trimmed non-empty parts.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// stripComments removes comment lines (starting with # or ;) from config content.
func stripComments(content string) string {
	var kept []string
	for line := range strings.SplitSeq(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
