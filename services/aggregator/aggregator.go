package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/services/fetcher"
	"regwatch/utils/metrics"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

func New(fetcher fetcher.Service) *Impl {
	return &Impl{fetcher: fetcher}
}

// Aggregate fetches every source concurrently. A source that fails, or
// panics, contributes nothing; the others are unaffected.
func (service *Impl) Aggregate(ctx context.Context, sources []entities.FeedSource) Result {
	result := Result{StartedAt: time.Now()}

	mapper := iter.Mapper[entities.FeedSource, fetcher.Result]{MaxGoroutines: len(sources)}
	result.Sources = mapper.Map(sources, func(source *entities.FeedSource) fetcher.Result {
		return service.fetchIsolated(ctx, *source)
	})

	result.Updates = Merge(result.Sources)
	result.CompletedAt = time.Now()

	for _, s := range result.Sources {
		metrics.SourceUpdates.WithLabelValues(s.Source.Key).Set(float64(len(s.Updates)))
	}
	metrics.AggregatedUpdates.Set(float64(len(result.Updates)))
	metrics.RefreshDuration.Observe(result.CompletedAt.Sub(result.StartedAt).Seconds())

	log.Info().
		Int(constants.LogSourceNumber, len(sources)).
		Int(constants.LogUpdateNumber, len(result.Updates)).
		Bool("anySucceeded", result.AnySucceeded()).
		Dur(constants.LogDuration, result.CompletedAt.Sub(result.StartedAt)).
		Msg("Sources aggregated")

	return result
}

func (service *Impl) fetchIsolated(ctx context.Context, source entities.FeedSource) (result fetcher.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str(constants.LogSourceKey, source.Key).
				Interface("panic", r).
				Msg("Source fetch panicked, source ignored")
			result = fetcher.Result{
				Source:   source,
				State:    fetcher.StateExhausted,
				Attempts: []fetcher.Attempt{{State: fetcher.StateExhausted, Err: fmt.Errorf("panic: %v", r)}},
			}
		}
	}()
	return service.fetcher.Fetch(ctx, source)
}

// Merge concatenates per-source updates in the given order, keeps the first
// update of each ID and sorts newest first. Ties keep their merge order.
func Merge(results []fetcher.Result) []entities.RegulatoryUpdate {
	total := 0
	for _, r := range results {
		total += len(r.Updates)
	}

	merged := make([]entities.RegulatoryUpdate, 0, total)
	seen := make(map[string]struct{}, total)
	for _, r := range results {
		for _, u := range r.Updates {
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			merged = append(merged, u)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PubDate.After(merged[j].PubDate)
	})
	return merged
}
