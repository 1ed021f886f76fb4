package constants

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	ConfigFileName = ".env"
	ExternalName   = "regwatch"
	Version        = "0.3.0"

	// TELEGRAM BOT, optional: the bot is not started when empty.
	TelegramBotToken = "TELEGRAM_BOT_TOKEN"

	// Maximum number of new updates pushed to subscribers per refresh.
	NotifyLimit = "NOTIFY_LIMIT"

	// SQLITE_URL URL. Defaults to a shared in-memory database.
	SqliteURL = "SQLITE_URL"

	// Zerolog values from [trace, debug, info, warn, error, fatal, panic].
	LogLevel = "LOG_LEVEL"

	// Probe port, also serves the JSON API and metrics.
	ProbePort = "PROBE_PORT"

	// Cron tab to refresh every source. Its period must exceed CACHE_FRESHNESS,
	// otherwise every other cycle is served from cache.
	RefreshCronTab = "REFRESH_CRON_TAB"

	// Cron tab to health.
	HealthCronTab = "HEALTH_CRON_TAB"

	// Scheduler location.
	Timezone = "TIMEZONE"

	// Freshness window of a cached source. Duration type.
	CacheFreshness = "CACHE_FRESHNESS"

	// Deadline of one forwarding attempt. Duration type.
	FetchAttemptTimeout = "FETCH_ATTEMPT_TIMEOUT"

	// Space separated forwarding endpoint templates; {url} is replaced by the
	// percent-encoded feed URL.
	ForwardingPaths = "FORWARDING_PATHS"

	// Requests per second allowed on each forwarding endpoint.
	ForwardingRate = "FORWARDING_RATE"

	// Largest feed body read from a forwarding endpoint.
	MaxBodyBytes = "MAX_BODY_BYTES"

	// User agent sent to forwarding endpoints.
	UserAgent = "USER_AGENT"

	// Maximum description length, in characters.
	DescriptionMaxLength = "DESCRIPTION_MAX_LENGTH"

	// Optional YAML files replacing the built-in source registry and keyword table.
	SourcesFile = "SOURCES_FILE"
	TopicsFile  = "TOPICS_FILE"

	// Number of updates per page.
	PageSize = "PAGE_SIZE"

	defaultTelegramBotToken     = ""
	defaultNotifyLimit          = 10
	defaultProbePort            = 9090
	defaultSqliteURL            = "file::memory:?cache=shared"
	defaultRefreshCronTab       = "*/20 * * * *"
	defaultHealthCrontab        = "*/5 * * * *"
	defaultTimezone             = "America/New_York"
	defaultCacheFreshness       = 15 * time.Minute
	defaultFetchAttemptTimeout  = 6 * time.Second
	defaultForwardingRate       = 2.0
	defaultMaxBodyBytes         = 10 << 20
	defaultUserAgent            = ExternalName + "/" + Version
	defaultDescriptionMaxLength = 300
	defaultPageSize             = 20
	defaultLogLevel             = zerolog.InfoLevel
)

func GetDefaultConfigValues() map[string]any {
	return map[string]any{
		TelegramBotToken:     defaultTelegramBotToken,
		NotifyLimit:          defaultNotifyLimit,
		ProbePort:            defaultProbePort,
		SqliteURL:            defaultSqliteURL,
		LogLevel:             defaultLogLevel.String(),
		RefreshCronTab:       defaultRefreshCronTab,
		HealthCronTab:        defaultHealthCrontab,
		Timezone:             defaultTimezone,
		CacheFreshness:       defaultCacheFreshness,
		FetchAttemptTimeout:  defaultFetchAttemptTimeout,
		ForwardingPaths:      GetForwardingPaths(),
		ForwardingRate:       defaultForwardingRate,
		MaxBodyBytes:         defaultMaxBodyBytes,
		UserAgent:            defaultUserAgent,
		DescriptionMaxLength: defaultDescriptionMaxLength,
		SourcesFile:          "",
		TopicsFile:           "",
		PageSize:             defaultPageSize,
	}
}
