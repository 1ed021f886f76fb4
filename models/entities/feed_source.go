package entities

// FeedSource is one upstream publisher. Sources are seeded once at startup
// and never mutated afterwards.
type FeedSource struct {
	Key      string `json:"key" yaml:"key" gorm:"primaryKey"`
	Label    string `json:"label" yaml:"label" gorm:"not null"`
	URL      string `json:"url" yaml:"url" gorm:"not null"`
	Color    string `json:"color" yaml:"color"`
	Position int    `json:"-" yaml:"-"`
}
