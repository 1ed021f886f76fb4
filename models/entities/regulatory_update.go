package entities

import "time"

// RegulatoryUpdate is one normalized feed item. Two updates with the same ID
// are the same item.
type RegulatoryUpdate struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pubDate"`
	Source      string    `json:"source"`
	SourceLabel string    `json:"sourceLabel"`
	Categories  []Topic   `json:"categories"`
}

func (u RegulatoryUpdate) HasCategory(topic Topic) bool {
	for _, c := range u.Categories {
		if c == topic {
			return true
		}
	}
	return false
}

// CacheEntry is the last successful result of one source.
type CacheEntry struct {
	Updates    []RegulatoryUpdate
	CapturedAt time.Time
}
