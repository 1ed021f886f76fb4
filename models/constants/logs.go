package constants

import "github.com/rs/zerolog"

const (
	LogFileName      = "fileName"
	LogSourceKey     = "sourceKey"
	LogSourceURL     = "sourceURL"
	LogForwardPath   = "forwardPath"
	LogAttempt       = "attempt"
	LogUpdateID      = "updateID"
	LogUpdateNumber  = "updateNumber"
	LogSourceNumber  = "sourceNumber"
	LogDuration      = "duration"
	LogStatus        = "status"
	LogChatID        = "chatID"
	LogCommand       = "cmd"
	LogUsername      = "username"
	LogLevelFallback = zerolog.InfoLevel
)
