package tracker

import (
	"context"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/pkg/observer"
	"regwatch/repositories/feedsources"
	"regwatch/services/aggregator"
	"regwatch/services/filter"

	"github.com/go-co-op/gocron/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

func New(aggregator aggregator.Service, feedSourceRepo feedsources.Repository, pageSize int) *Impl {
	if pageSize <= 0 {
		pageSize = filter.DefaultPageSize
	}
	return &Impl{
		aggregator:     aggregator,
		feedSourceRepo: feedSourceRepo,
		pageSize:       pageSize,
		snapshot:       Snapshot{Status: StatusLoading},
		seen:           cache.New(seenRetention, time.Hour),
		observers:      map[observer.Observer]struct{}{},
	}
}

// Schedule registers the refresh cycle. Overlapping runs are skipped.
func (service *Impl) Schedule(scheduler gocron.Scheduler, cronTab string) error {
	_, errJob := scheduler.NewJob(
		gocron.CronJob(cronTab, false),
		gocron.NewTask(func() { service.Refresh(context.Background()) }),
		gocron.WithName("Refresh regulatory feeds"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return errJob
}

func (service *Impl) RegisterObserver(o observer.Observer) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.observers[o] = struct{}{}
}

func (service *Impl) notify(e observer.Event) {
	service.mu.RLock()
	observers := make([]observer.Observer, 0, len(service.observers))
	for o := range service.observers {
		observers = append(observers, o)
	}
	service.mu.RUnlock()

	for _, o := range observers {
		o.OnNotify(e)
	}
}

// Refresh runs one aggregation cycle and replaces the snapshot with its
// result.
func (service *Impl) Refresh(ctx context.Context) Snapshot {
	log.Info().Msgf("Refreshing regulatory feeds...")

	sources, err := service.feedSourceRepo.GetFeedSources()
	if err != nil {
		log.Error().Err(err).Msg("Cannot read source registry, refresh skipped")
		return service.Snapshot()
	}

	result := service.aggregator.Aggregate(ctx, sources)

	snapshot := Snapshot{
		Status:      StatusFailed,
		Updates:     result.Updates,
		Sources:     make([]SourceStatus, 0, len(result.Sources)),
		RefreshedAt: result.CompletedAt,
	}
	if result.AnySucceeded() {
		snapshot.Status = StatusReady
	}
	for _, s := range result.Sources {
		status := SourceStatus{
			Key:       s.Source.Key,
			Label:     s.Source.Label,
			Color:     s.Source.Color,
			Updates:   len(s.Updates),
			FromCache: s.FromCache,
			Attempts:  len(s.Attempts),
		}
		if !s.Succeeded() && len(s.Attempts) > 0 {
			if last := s.Attempts[len(s.Attempts)-1].Err; last != nil {
				status.LastError = last.Error()
			}
		}
		snapshot.Sources = append(snapshot.Sources, status)
	}

	service.mu.Lock()
	// Until a cycle reaches a source, every update seen is backlog.
	priming := !service.primed
	if snapshot.Status == StatusReady {
		service.primed = true
	}
	snapshot.Cycles = service.snapshot.Cycles + 1
	service.snapshot = snapshot
	service.mu.Unlock()

	fresh := service.markSeen(result.Updates)

	log.Info().
		Str(constants.LogStatus, string(snapshot.Status)).
		Int(constants.LogUpdateNumber, len(snapshot.Updates)).
		Int("newUpdates", len(fresh)).
		Msg("Regulatory feeds refreshed")

	switch {
	case snapshot.Status == StatusFailed:
		service.notify(observer.RefreshFailed())
	case len(fresh) > 0 && !priming:
		service.notify(observer.NewUpdates(fresh))
	}

	return snapshot
}

// markSeen records every ID and returns the updates never seen before.
func (service *Impl) markSeen(updates []entities.RegulatoryUpdate) []entities.RegulatoryUpdate {
	var fresh []entities.RegulatoryUpdate
	for _, u := range updates {
		if _, found := service.seen.Get(u.ID); found {
			continue
		}
		service.seen.SetDefault(u.ID, struct{}{})
		fresh = append(fresh, u)
	}
	return fresh
}

func (service *Impl) Snapshot() Snapshot {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.snapshot
}

func (service *Impl) Query(state entities.FilterState, page int) QueryResult {
	snapshot := service.Snapshot()
	filtered := filter.Apply(snapshot.Updates, state)

	return QueryResult{
		Status:   snapshot.Status,
		Summary:  filter.Summary(len(filtered), len(snapshot.Updates)),
		Total:    len(snapshot.Updates),
		Filtered: len(filtered),
		Page:     filter.Paginate(filtered, page, service.pageSize),
	}
}
