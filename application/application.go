package application

import (
	"context"
	"errors"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/repositories/feedsources"
	telegramRepo "regwatch/repositories/telegram"
	"regwatch/services/aggregator"
	"regwatch/services/api"
	"regwatch/services/categorizer"
	"regwatch/services/fetcher"
	"regwatch/services/health"
	"regwatch/services/parser"
	"regwatch/services/telegram"
	"regwatch/services/tracker"
	databases "regwatch/utils/databases"
	"regwatch/utils/httpclient"
	"regwatch/utils/insights"
	"regwatch/utils/tables"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// NewCore opens the database, seeds the source registry and builds the
// fetch, aggregate and track pipeline from the current configuration.
func NewCore() (*Core, error) {
	db := databases.New(viper.GetString(constants.SqliteURL))
	if errDB := db.Run(); errDB != nil {
		return nil, errDB
	}

	errMigration := db.GetDB().AutoMigrate(&entities.FeedSource{}, &entities.TelegramUser{})
	if errMigration != nil {
		return nil, errMigration
	}

	feedSourceRepo := feedsources.New(db)
	if errSeed := seedSources(feedSourceRepo); errSeed != nil {
		return nil, errSeed
	}

	table, errTopics := topicTable()
	if errTopics != nil {
		return nil, errTopics
	}
	categorizerService := categorizer.New(table)

	parserService := parser.New(categorizerService, viper.GetInt(constants.DescriptionMaxLength))
	attemptTimeout := viper.GetDuration(constants.FetchAttemptTimeout)
	fetcherService, errFetcher := fetcher.New(
		httpclient.New(2*attemptTimeout),
		parserService,
		fetcher.NewMemoryStore(),
		fetcher.Options{
			Paths:          fetcher.ParsePaths(viper.GetStringSlice(constants.ForwardingPaths)),
			AttemptTimeout: attemptTimeout,
			Freshness:      viper.GetDuration(constants.CacheFreshness),
			RatePerSecond:  viper.GetFloat64(constants.ForwardingRate),
			MaxBodyBytes:   viper.GetInt64(constants.MaxBodyBytes),
			UserAgent:      viper.GetString(constants.UserAgent),
		},
	)
	if errFetcher != nil {
		return nil, errFetcher
	}

	aggregatorService := aggregator.New(fetcherService)
	trackerService := tracker.New(aggregatorService, feedSourceRepo, viper.GetInt(constants.PageSize))

	return &Core{
		DB:             db,
		FeedSourceRepo: feedSourceRepo,
		Categorizer:    categorizerService,
		Tracker:        trackerService,
	}, nil
}

func seedSources(repo feedsources.Repository) error {
	if repo.Count() > 0 {
		return nil
	}

	sources := constants.GetFeedSources()
	if path := viper.GetString(constants.SourcesFile); path != "" {
		loaded, err := tables.LoadSources(path)
		if err != nil {
			return err
		}
		sources = loaded
		log.Info().Str(constants.LogFileName, path).Int(constants.LogSourceNumber, len(sources)).Msg("Source registry loaded")
	}
	return repo.Seed(sources)
}

func topicTable() (entities.TopicTable, error) {
	path := viper.GetString(constants.TopicsFile)
	if path == "" {
		return constants.GetTopicTable(), nil
	}
	table, err := tables.LoadTopics(path)
	if err != nil {
		return entities.TopicTable{}, err
	}
	log.Info().Str(constants.LogFileName, path).Msg("Keyword table loaded")
	return table, nil
}

func New() (*Impl, error) {
	core, errCore := NewCore()
	if errCore != nil {
		return nil, errCore
	}

	location, err := time.LoadLocation(viper.GetString(constants.Timezone))
	if err != nil {
		return nil, err
	}

	scheduler, errScheduler := gocron.NewScheduler(gocron.WithLocation(location))
	if errScheduler != nil {
		return nil, errScheduler
	}

	if errJob := core.Tracker.Schedule(scheduler, viper.GetString(constants.RefreshCronTab)); errJob != nil {
		return nil, errJob
	}

	healthService, errHealth := health.New(scheduler, viper.GetString(constants.HealthCronTab), core.Tracker)
	if errHealth != nil {
		return nil, errHealth
	}

	var telegramService telegram.Service
	tgService, errTg := telegram.New(viper.GetString(constants.TelegramBotToken), telegramRepo.New(core.DB),
		core.Tracker, core.Categorizer, viper.GetInt(constants.NotifyLimit))
	switch {
	case errors.Is(errTg, telegram.ErrTokenIsMissing):
		log.Info().Msg("No telegram token, notifications are disabled")
	case errTg != nil:
		return nil, errTg
	default:
		core.Tracker.RegisterObserver(tgService)
		telegramService = tgService
	}

	apiService := api.New(core.Tracker, core.FeedSourceRepo, core.Categorizer)
	probes := insights.NewProbes(viper.GetInt(constants.ProbePort), core.DB.IsConnected, func() bool {
		return core.Tracker.Snapshot().Status != tracker.StatusLoading
	})
	probes.Handle("/api/", apiService.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	return &Impl{
		Core:            core,
		ctx:             ctx,
		cancel:          cancel,
		scheduler:       scheduler,
		healthService:   healthService,
		apiService:      apiService,
		telegramService: telegramService,
		probes:          probes,
	}, nil
}

func (app *Impl) Run() {
	app.scheduler.Start()
	go app.Tracker.Refresh(app.ctx)

	if app.telegramService != nil {
		go func() {
			if err := app.telegramService.ListenAndDispatch(); err != nil {
				log.Error().Err(err).Msg("Telegram bot stopped")
			}
		}()
	}

	for _, job := range app.scheduler.Jobs() {
		scheduledTime, err := job.NextRun()
		if err == nil {
			log.Info().Msgf("%v scheduled at %v", job.Name(), scheduledTime)
		}
	}

	go app.probes.ListenAndServe()
}

func (app *Impl) Shutdown() {
	app.cancel()
	if err := app.scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Cannot shutdown scheduler, continuing...")
	}
	if app.telegramService != nil {
		app.telegramService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.probes.Shutdown(ctx)

	app.DB.Shutdown()
	log.Info().Msgf("Application is no longer running")
}
