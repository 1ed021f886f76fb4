package feedsources

import (
	"regwatch/models/entities"
	"regwatch/utils/databases"

	"gorm.io/gorm"
)

func New(db databases.SqlConnection) *Impl {
	return &Impl{db: db}
}

// GetFeedSources returns the registry in declaration order.
func (repo *Impl) GetFeedSources() ([]entities.FeedSource, error) {
	var feedSources []entities.FeedSource
	response := repo.db.GetDB().Model(&entities.FeedSource{}).Order("position").Find(&feedSources)
	return feedSources, response.Error
}

func (repo *Impl) GetFeedSource(key string) (entities.FeedSource, error) {
	var feedSource entities.FeedSource
	result := repo.db.GetDB().Where(&entities.FeedSource{Key: key}).First(&feedSource)
	return feedSource, result.Error
}

func (repo *Impl) Create(feedSource entities.FeedSource) error {
	return repo.db.GetDB().Create(&feedSource).Error
}

// Seed inserts the whole registry at once, or nothing.
func (repo *Impl) Seed(feedSources []entities.FeedSource) error {
	return repo.db.GetDB().Transaction(func(tx *gorm.DB) error {
		for _, feedSource := range feedSources {
			if err := tx.Create(&feedSource).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *Impl) Count() int64 {
	count := new(int64)
	repo.db.GetDB().Model(&entities.FeedSource{}).Count(count)

	return *count
}
