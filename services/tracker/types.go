package tracker

import (
	"context"
	"sync"
	"time"

	"regwatch/models/entities"
	"regwatch/pkg/observer"
	"regwatch/repositories/feedsources"
	"regwatch/services/aggregator"
	"regwatch/services/filter"

	"github.com/patrickmn/go-cache"
)

const seenRetention = 7 * 24 * time.Hour

type Status string

const (
	// StatusLoading: no refresh has completed yet.
	StatusLoading Status = "loading"
	// StatusReady: at least one source answered during the last refresh.
	StatusReady Status = "ready"
	// StatusFailed: the last refresh got nothing from any source.
	StatusFailed Status = "failed"
)

type SourceStatus struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	Updates   int    `json:"updates"`
	FromCache bool   `json:"fromCache"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"lastError,omitempty"`
}

type Snapshot struct {
	Status      Status                      `json:"status"`
	Updates     []entities.RegulatoryUpdate `json:"-"`
	Sources     []SourceStatus              `json:"sources"`
	RefreshedAt time.Time                   `json:"refreshedAt"`
	Cycles      int                         `json:"cycles"`
}

// QueryResult is a filtered page of the latest snapshot.
type QueryResult struct {
	Status   Status      `json:"status"`
	Summary  string      `json:"summary"`
	Total    int         `json:"total"`
	Filtered int         `json:"filtered"`
	Page     filter.Page `json:"page"`
}

type Service interface {
	observer.Notifier
	Refresh(ctx context.Context) Snapshot
	Snapshot() Snapshot
	Query(state entities.FilterState, page int) QueryResult
}

type Impl struct {
	aggregator     aggregator.Service
	feedSourceRepo feedsources.Repository
	pageSize       int

	mu        sync.RWMutex
	snapshot  Snapshot
	seen      *cache.Cache
	primed    bool
	observers map[observer.Observer]struct{}
}
