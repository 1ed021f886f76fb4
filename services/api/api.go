package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/repositories/feedsources"
	"regwatch/services/categorizer"
	"regwatch/services/tracker"

	"github.com/rs/zerolog/log"
)

func New(tracker tracker.Service, feedSourceRepo feedsources.Repository, categorizer categorizer.Service) *Impl {
	return &Impl{tracker: tracker, feedSourceRepo: feedSourceRepo, categorizer: categorizer}
}

func (service *Impl) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/updates", service.getUpdates)
	mux.HandleFunc("GET /api/sources", service.getSources)
	mux.HandleFunc("GET /api/topics", service.getTopics)
	mux.HandleFunc("GET /api/status", service.getStatus)
	return mux
}

// getUpdates serves one page of the filtered snapshot. Query parameters:
// q, source (repeatable or comma separated), topic (idem) and page.
func (service *Impl) getUpdates(w http.ResponseWriter, r *http.Request) {
	state, page, err := service.parseQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, service.tracker.Query(state, page))
}

func (service *Impl) getSources(w http.ResponseWriter, _ *http.Request) {
	sources, err := service.feedSourceRepo.GetFeedSources()
	if err != nil {
		log.Error().Err(err).Msg("Cannot read source registry")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "source registry unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (service *Impl) getTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, service.categorizer.Topics())
}

func (service *Impl) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, service.tracker.Snapshot())
}

func (service *Impl) parseQuery(values url.Values) (entities.FilterState, int, error) {
	state := entities.FilterState{Search: values.Get("q")}

	page := 1
	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return state, 0, ErrInvalidPage
		}
		page = n
	}

	sourceKeys := splitValues(values["source"])
	if len(sourceKeys) > 0 {
		known, err := service.feedSourceRepo.GetFeedSources()
		if err != nil {
			return state, 0, err
		}
		for _, key := range sourceKeys {
			if !containsSource(known, key) {
				return state, 0, fmt.Errorf("%w: %s", ErrUnknownSource, key)
			}
		}
		state.Sources = sourceKeys
	}

	for _, name := range splitValues(values["topic"]) {
		topic, err := service.categorizer.ResolveTopic(name)
		if err != nil {
			return state, 0, err
		}
		state.Topics = append(state.Topics, topic)
	}

	return state, page, nil
}

func splitValues(raw []string) []string {
	var values []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func containsSource(sources []entities.FeedSource, key string) bool {
	for _, s := range sources {
		if s.Key == key {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Int(constants.LogStatus, status).Msg("Cannot write response")
	}
}
