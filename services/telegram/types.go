package telegram

import (
	"errors"

	telegramRepo "regwatch/repositories/telegram"
	"regwatch/services/categorizer"
	"regwatch/services/tracker"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

var (
	ErrTokenIsMissing         = errors.New("telegram token is missing")
	ErrBotNotInitialized      = errors.New("telegram bot  is not ready yet")
	ErrFailedToStartListening = errors.New("telegram bot can't start to listen command")
)

type Service interface {
	ListenAndDispatch() error
	Stop()
}

// sender is the part of the bot API the service talks to.
type sender interface {
	SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error)
}

type Impl struct {
	bot          *gotgbot.Bot
	sender       sender
	updater      *ext.Updater
	telegramRepo telegramRepo.Repository
	tracker      tracker.Service
	categorizer  categorizer.Service
	notifyLimit  int
}
