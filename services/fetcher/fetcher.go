package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/services/parser"
	"regwatch/utils/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func New(client *http.Client, parser parser.Service, store Store, opts Options) (*Impl, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}
	limiters := make([]*rate.Limiter, 0, len(opts.Paths))
	for _, p := range opts.Paths {
		if !strings.Contains(p.Template, urlPlaceholder) {
			return nil, fmt.Errorf("%w: %s", ErrBadPath, p.Template)
		}
		limit := rate.Inf
		if opts.RatePerSecond > 0 {
			limit = rate.Limit(opts.RatePerSecond)
		}
		limiters = append(limiters, rate.NewLimiter(limit, 1))
	}
	if store == nil {
		store = NopStore{}
	}

	return &Impl{
		client:   client,
		parser:   parser,
		store:    store,
		paths:    opts.Paths,
		limiters: limiters,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// ParsePaths builds forwarding paths from templates, named after their host.
func ParsePaths(templates []string) []Path {
	paths := make([]Path, 0, len(templates))
	for _, tpl := range templates {
		tpl = strings.TrimSpace(tpl)
		if tpl == "" {
			continue
		}
		name := tpl
		if u, err := url.Parse(strings.ReplaceAll(tpl, urlPlaceholder, "")); err == nil && u.Host != "" {
			name = u.Host
		}
		paths = append(paths, Path{Name: name, Template: tpl})
	}
	return paths
}

// Wrap returns the forwarding URL for target.
func (p Path) Wrap(target string) string {
	return strings.ReplaceAll(p.Template, urlPlaceholder, url.QueryEscape(target))
}

func (service *Impl) WithClock(now func() time.Time) *Impl {
	service.now = now
	return service
}

// Fetch serves a fresh cache entry when there is one, otherwise walks the
// forwarding paths in order and keeps the first one yielding updates.
func (service *Impl) Fetch(ctx context.Context, source entities.FeedSource) Result {
	result := Result{Source: source, State: StateIdle}

	if entry, found := service.store.Get(source.URL); found {
		if service.now().Sub(entry.CapturedAt) < service.opts.Freshness {
			metrics.CacheLookups.WithLabelValues(source.Key, "hit").Inc()
			log.Debug().
				Str(constants.LogSourceKey, source.Key).
				Int(constants.LogUpdateNumber, len(entry.Updates)).
				Msg("Serving source from cache")
			result.Updates = entry.Updates
			result.State = StateCached
			result.FromCache = true
			return result
		}
		metrics.CacheLookups.WithLabelValues(source.Key, "stale").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues(source.Key, "miss").Inc()
	}

	for i, path := range service.paths {
		if ctx.Err() != nil {
			break
		}
		result.State = StateTrying

		start := time.Now()
		updates, err := service.attempt(ctx, i, source)
		attempt := Attempt{Path: path.Name, Err: err, Duration: time.Since(start)}

		if err == nil {
			attempt.State = StateSuccess
			result.Attempts = append(result.Attempts, attempt)
			metrics.FetchAttempts.WithLabelValues(source.Key, path.Name, "success").Inc()

			service.store.Put(source.URL, entities.CacheEntry{Updates: updates, CapturedAt: service.now()})
			result.Updates = updates
			result.State = StateSuccess

			log.Info().
				Str(constants.LogSourceKey, source.Key).
				Str(constants.LogForwardPath, path.Name).
				Int(constants.LogAttempt, i+1).
				Int(constants.LogUpdateNumber, len(updates)).
				Dur(constants.LogDuration, attempt.Duration).
				Msg("Source fetched")
			return result
		}

		attempt.State = StateNextPath
		result.Attempts = append(result.Attempts, attempt)
		metrics.FetchAttempts.WithLabelValues(source.Key, path.Name, outcome(err)).Inc()
		log.Warn().
			Err(err).
			Str(constants.LogSourceKey, source.Key).
			Str(constants.LogForwardPath, path.Name).
			Int(constants.LogAttempt, i+1).
			Msg("Forwarding path failed, trying next one")
	}

	result.State = StateExhausted
	log.Error().
		Str(constants.LogSourceKey, source.Key).
		Str(constants.LogSourceURL, source.URL).
		Int(constants.LogAttempt, len(result.Attempts)).
		Msg("Every forwarding path failed, source ignored for this cycle")
	return result
}

func (service *Impl) attempt(ctx context.Context, i int, source entities.FeedSource) ([]entities.RegulatoryUpdate, error) {
	ctx, cancel := context.WithTimeout(ctx, service.opts.AttemptTimeout)
	defer cancel()

	body, err := service.download(ctx, i, source.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}

	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if !strings.Contains(body, "<") {
		return nil, ErrNotMarkup
	}

	parsed := service.parser.Parse(body, source)
	if parsed.Err != nil {
		return nil, parsed.Err
	}
	if len(parsed.Updates) == 0 {
		return nil, ErrNoRecords
	}
	return parsed.Updates, nil
}

func (service *Impl) download(ctx context.Context, i int, target string) (string, error) {
	if err := service.limiters[i].Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service.paths[i].Wrap(target), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if service.opts.UserAgent != "" {
		req.Header.Set("User-Agent", service.opts.UserAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := service.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if service.opts.MaxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, service.opts.MaxBodyBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	if service.opts.MaxBodyBytes > 0 && int64(len(data)) > service.opts.MaxBodyBytes {
		return "", ErrBodyTooBig
	}
	return string(data), nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrEmptyBody), errors.Is(err, ErrNotMarkup):
		return "empty"
	case errors.Is(err, parser.ErrUnparsable), errors.Is(err, parser.ErrEmpty):
		return "unparsable"
	case errors.Is(err, ErrNoRecords):
		return "no_records"
	default:
		return "transport"
	}
}
