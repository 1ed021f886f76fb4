package feedsources

import (
	"regwatch/models/entities"
	"regwatch/utils/databases"
)

type Repository interface {
	GetFeedSources() ([]entities.FeedSource, error)
	GetFeedSource(key string) (entities.FeedSource, error)
	Create(feedSource entities.FeedSource) error
	Seed(feedSources []entities.FeedSource) error
	Count() int64
}

type Impl struct {
	db databases.SqlConnection
}
