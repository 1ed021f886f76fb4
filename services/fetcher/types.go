package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"

	"regwatch/models/entities"
	"regwatch/services/parser"

	"golang.org/x/time/rate"
)

const urlPlaceholder = "{url}"

var (
	ErrStatus     = errors.New("forwarding endpoint answered with a non-success status")
	ErrEmptyBody  = errors.New("forwarding endpoint returned an empty body")
	ErrNotMarkup  = errors.New("forwarding endpoint returned a body without markup")
	ErrNoRecords  = errors.New("feed parsed to zero updates")
	ErrTimeout    = errors.New("forwarding attempt timed out")
	ErrNoPaths    = errors.New("no forwarding path configured")
	ErrBadPath    = errors.New("forwarding path template has no {url} placeholder")
	ErrBodyTooBig = errors.New("feed body exceeds the size limit")
)

// Store keeps the last successful result of each source, keyed by the
// source endpoint URL.
type Store interface {
	Get(key string) (entities.CacheEntry, bool)
	Put(key string, entry entities.CacheEntry)
}

// Path is one forwarding endpoint. Template wraps the percent-encoded
// target URL in place of {url}.
type Path struct {
	Name     string
	Template string
}

// State of a fetch: Idle -> Trying[i] -> Success | NextPath | Exhausted.
type State int

const (
	StateIdle State = iota
	StateTrying
	StateSuccess
	StateNextPath
	StateExhausted
	StateCached
)

// Attempt records the outcome of one forwarding path.
type Attempt struct {
	Path     string
	State    State
	Err      error
	Duration time.Duration
}

// Result is what one source yielded. An exhausted source has no updates and
// no error: missing data is a valid outcome for the caller.
type Result struct {
	Source    entities.FeedSource
	Updates   []entities.RegulatoryUpdate
	State     State
	FromCache bool
	Attempts  []Attempt
}

func (r Result) Succeeded() bool {
	return len(r.Updates) > 0
}

type Service interface {
	Fetch(ctx context.Context, source entities.FeedSource) Result
}

type Options struct {
	Paths          []Path
	AttemptTimeout time.Duration
	Freshness      time.Duration
	RatePerSecond  float64
	MaxBodyBytes   int64
	UserAgent      string
}

type Impl struct {
	client   *http.Client
	parser   parser.Service
	store    Store
	paths    []Path
	limiters []*rate.Limiter
	opts     Options
	now      func() time.Time
}
