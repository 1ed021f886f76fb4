// Package filter narrows an aggregate result to what a user query selects.
package filter

import (
	"fmt"
	"strings"

	"regwatch/models/entities"
)

const DefaultPageSize = 20

// Page is one slice of a filtered list.
type Page struct {
	Updates []entities.RegulatoryUpdate `json:"updates"`
	Number  int                         `json:"number"`
	Size    int                         `json:"size"`
	Total   int                         `json:"total"`
	HasMore bool                        `json:"hasMore"`
}

// Apply keeps the updates matching state, preserving order.
func Apply(updates []entities.RegulatoryUpdate, state entities.FilterState) []entities.RegulatoryUpdate {
	q := compile(state)
	out := make([]entities.RegulatoryUpdate, 0, len(updates))
	for _, u := range updates {
		if q.matches(u) {
			out = append(out, u)
		}
	}
	return out
}

// Matches evaluates state against a single update.
func Matches(u entities.RegulatoryUpdate, state entities.FilterState) bool {
	return compile(state).matches(u)
}

type query struct {
	sources map[string]struct{}
	topics  map[entities.Topic]struct{}
	search  string
}

func compile(state entities.FilterState) query {
	q := query{search: strings.ToLower(strings.TrimSpace(state.Search))}
	if len(state.Sources) > 0 {
		q.sources = make(map[string]struct{}, len(state.Sources))
		for _, s := range state.Sources {
			q.sources[s] = struct{}{}
		}
	}
	if len(state.Topics) > 0 {
		q.topics = make(map[entities.Topic]struct{}, len(state.Topics))
		for _, t := range state.Topics {
			q.topics[t] = struct{}{}
		}
	}
	return q
}

// matches rejects on source and topic first. Once both pass, a search
// string, when set, alone decides inclusion.
func (q query) matches(u entities.RegulatoryUpdate) bool {
	if q.sources != nil {
		if _, ok := q.sources[u.Source]; !ok {
			return false
		}
	}

	if q.topics != nil {
		found := false
		for _, c := range u.Categories {
			if _, ok := q.topics[c]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.search != "" {
		return strings.Contains(strings.ToLower(u.Title), q.search) ||
			strings.Contains(strings.ToLower(u.Description), q.search) ||
			strings.Contains(strings.ToLower(u.SourceLabel), q.search)
	}

	return true
}

// Paginate returns page number (1-based) of size updates. Out of range pages
// are empty.
func Paginate(updates []entities.RegulatoryUpdate, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}

	page := Page{Number: number, Size: size, Total: len(updates)}
	start := (number - 1) * size
	if start >= len(updates) {
		page.Updates = []entities.RegulatoryUpdate{}
		return page
	}
	end := start + size
	if end > len(updates) {
		end = len(updates)
	}
	page.Updates = updates[start:end]
	page.HasMore = end < len(updates)
	return page
}

// Summary is the count line shown above a list: "12 updates" when nothing
// is filtered out, "3 of 12 updates" otherwise.
func Summary(filtered, total int) string {
	if filtered == total {
		return fmt.Sprintf("%d updates", total)
	}
	return fmt.Sprintf("%d of %d updates", filtered, total)
}
