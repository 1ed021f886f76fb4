package telegram

import (
	"strings"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/pkg/observer"
	telegramRepo "regwatch/repositories/telegram"
	"regwatch/services/categorizer"
	"regwatch/services/tracker"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
	"github.com/rs/zerolog/log"
)

func New(token string, telegramRepo telegramRepo.Repository, tracker tracker.Service,
	categorizer categorizer.Service, notifyLimit int) (*Impl, error) {
	if token == "" {
		return &Impl{}, ErrTokenIsMissing
	}

	b, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return &Impl{}, ErrBotNotInitialized
	}

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Warn().Err(err).Msg("an error occurred while handling update")
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})

	service := newService(b, telegramRepo, tracker, categorizer, notifyLimit)
	service.bot = b
	dispatcher.AddHandler(handlers.NewCommand("start", service.startCmd))
	dispatcher.AddHandler(handlers.NewCommand("help", service.helpCmd))
	dispatcher.AddHandler(handlers.NewCommand("latest", service.latestCmd))
	dispatcher.AddHandler(handlers.NewCommand("sources", service.sourcesCmd))
	dispatcher.AddHandler(handlers.NewCommand("subscribe", service.subscribeCmd))
	dispatcher.AddHandler(handlers.NewCommand("unsubscribe", service.unsubscribeCmd))
	dispatcher.AddHandler(handlers.NewMessage(message.Command, service.unknownCmd))

	service.updater = ext.NewUpdater(dispatcher, nil)

	return service, nil
}

func newService(sender sender, telegramRepo telegramRepo.Repository, tracker tracker.Service,
	categorizer categorizer.Service, notifyLimit int) *Impl {
	return &Impl{
		sender:       sender,
		telegramRepo: telegramRepo,
		tracker:      tracker,
		categorizer:  categorizer,
		notifyLimit:  notifyLimit,
	}
}

func (service *Impl) ListenAndDispatch() error {
	err := service.updater.StartPolling(service.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return ErrFailedToStartListening
	}

	log.Info().Str(constants.LogUsername, service.bot.Username).Msg("Telegram bot is polling")
	service.updater.Idle()
	return nil
}

func (service *Impl) Stop() {
	if service.updater == nil {
		return
	}
	if err := service.updater.Stop(); err != nil {
		log.Error().Err(err).Msg("Cannot stop telegram updater, continuing...")
	}
}

func (service *Impl) send(chatID int64, text string) {
	_, err := service.sender.SendMessage(chatID, text, &gotgbot.SendMessageOpts{
		ParseMode:          "HTML",
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{IsDisabled: true},
	})
	if err != nil {
		log.Error().Err(err).Int64(constants.LogChatID, chatID).Msg("Cannot send telegram message")
	}
}

func logCommand(cmd string, ctx *ext.Context) {
	log.Info().
		Str(constants.LogCommand, cmd).
		Str(constants.LogUsername, ctx.EffectiveChat.Username).
		Int64(constants.LogChatID, ctx.EffectiveChat.Id).
		Msg("command received")
}

func (service *Impl) startCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("start", ctx)
	service.send(ctx.EffectiveChat.Id, welcomeMessage())
	return nil
}

func (service *Impl) helpCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("help", ctx)
	service.send(ctx.EffectiveChat.Id, helpMessage(service.categorizer.Topics()))
	return nil
}

func (service *Impl) unknownCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("unknown", ctx)
	service.send(ctx.EffectiveChat.Id, unknownMessage())
	return nil
}

func (service *Impl) latestCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("latest", ctx)
	service.send(ctx.EffectiveChat.Id, service.latest(commandArgument(ctx), time.Now()))
	return nil
}

func (service *Impl) sourcesCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("sources", ctx)
	service.send(ctx.EffectiveChat.Id, sourcesMessage(service.tracker.Snapshot(), time.Now()))
	return nil
}

func (service *Impl) subscribeCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("subscribe", ctx)
	service.send(ctx.EffectiveChat.Id, service.subscribe(ctx.EffectiveChat.Id, ctx.EffectiveChat.Username, commandArgument(ctx)))
	return nil
}

func (service *Impl) unsubscribeCmd(b *gotgbot.Bot, ctx *ext.Context) error {
	logCommand("unsubscribe", ctx)
	err := service.telegramRepo.Delete(entities.TelegramUser{ChatID: ctx.EffectiveChat.Id})
	if err != nil {
		log.Error().Err(err).Int64(constants.LogChatID, ctx.EffectiveChat.Id).Msg("error on deleted")
	}
	service.send(ctx.EffectiveChat.Id, unsubscribedMessage())
	return nil
}

// latest answers /latest, optionally restricted to one topic.
func (service *Impl) latest(argument string, now time.Time) string {
	var state entities.FilterState
	if argument != "" {
		topic, err := service.categorizer.ResolveTopic(argument)
		if err != nil {
			return invalidTopicMessage(argument, service.categorizer.Topics())
		}
		state.Topics = []entities.Topic{topic}
	}

	result := service.tracker.Query(state, 1)
	switch result.Status {
	case tracker.StatusLoading:
		return loadingMessage()
	case tracker.StatusFailed:
		return failedMessage()
	}

	updates := result.Page.Updates
	if service.notifyLimit > 0 && len(updates) > service.notifyLimit {
		updates = updates[:service.notifyLimit]
	}
	return updatesMessage("Latest updates", result.Summary, updates, now)
}

func (service *Impl) subscribe(chatID int64, username, argument string) string {
	user := entities.TelegramUser{ChatID: chatID, Name: username}
	if argument != "" {
		topic, err := service.categorizer.ResolveTopic(argument)
		if err != nil {
			return invalidTopicMessage(argument, service.categorizer.Topics())
		}
		user.Topic = string(topic)
	}

	if err := service.telegramRepo.SaveOrUpdate(user); err != nil {
		log.Error().Err(err).Str(constants.LogUsername, username).Int64(constants.LogChatID, chatID).Msg("error on saved")
		return unknownMessage()
	}
	return subscribedMessage(user.Topic)
}

func (service *Impl) OnNotify(e observer.Event) {
	log.Info().Msg("Received internal notification")
	switch e.E {
	case observer.NewUpdatesEvent:
		service.broadcast(e.Updates, time.Now())
	case observer.RefreshFailedEvent:
		log.Warn().Msg("Refresh failed for every source, subscribers are not notified")
	}
}

// broadcast pushes new updates to each subscriber, restricted to their topic.
func (service *Impl) broadcast(updates []entities.RegulatoryUpdate, now time.Time) {
	users, err := service.telegramRepo.FetchAll()
	if err != nil {
		log.Error().Err(err).Msg("Cannot read subscribers")
		return
	}

	for _, user := range users {
		selected := selectFor(user, updates, service.notifyLimit)
		if len(selected) == 0 {
			continue
		}
		log.Info().Int64(constants.LogChatID, user.ChatID).Int(constants.LogUpdateNumber, len(selected)).Msg("send new updates")
		service.send(user.ChatID, updatesMessage("New regulatory updates", "", selected, now))
	}
}

func selectFor(user entities.TelegramUser, updates []entities.RegulatoryUpdate, limit int) []entities.RegulatoryUpdate {
	selected := make([]entities.RegulatoryUpdate, 0, len(updates))
	for _, u := range updates {
		if user.Topic != "" && !u.HasCategory(entities.Topic(user.Topic)) {
			continue
		}
		selected = append(selected, u)
		if limit > 0 && len(selected) == limit {
			break
		}
	}
	return selected
}

// commandArgument returns the text following the command, if any.
func commandArgument(ctx *ext.Context) string {
	args := ctx.Args()
	if len(args) < 2 {
		return ""
	}
	return strings.Join(args[1:], " ")
}
