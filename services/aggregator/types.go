package aggregator

import (
	"context"
	"time"

	"regwatch/models/entities"
	"regwatch/services/fetcher"
)

type Service interface {
	Aggregate(ctx context.Context, sources []entities.FeedSource) Result
}

// Result is one refresh cycle: the merged updates, newest first, and what
// each source yielded, in registry order.
type Result struct {
	Updates     []entities.RegulatoryUpdate
	Sources     []fetcher.Result
	StartedAt   time.Time
	CompletedAt time.Time
}

// AnySucceeded tells a genuinely empty cycle apart from one where every
// source failed.
func (r Result) AnySucceeded() bool {
	for _, s := range r.Sources {
		if s.Succeeded() {
			return true
		}
	}
	return false
}

type Impl struct {
	fetcher fetcher.Service
}
