package telegram

import (
	"errors"
	"fmt"

	"regwatch/models/entities"
	"regwatch/utils/databases"

	"gorm.io/gorm"
)

func New(db databases.SqlConnection) *Impl {
	return &Impl{db: db}
}

func (repo *Impl) FetchAll() ([]entities.TelegramUser, error) {
	var users []entities.TelegramUser
	result := repo.db.GetDB().Find(&users)

	return users, result.Error
}

// SaveOrUpdate subscribes a chat, or changes the topic of an existing
// subscription.
func (repo *Impl) SaveOrUpdate(user entities.TelegramUser) error {
	var existingUser entities.TelegramUser

	result := repo.db.GetDB().Where("chat_id = ?", user.ChatID).First(&existingUser)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := repo.db.GetDB().Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check subscriber existence: %w", result.Error)
	}

	if err := repo.db.GetDB().Model(&existingUser).
		Select("name", "topic").
		Updates(entities.TelegramUser{Name: user.Name, Topic: user.Topic}).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (repo *Impl) Delete(user entities.TelegramUser) error {
	result := repo.db.GetDB().Delete(&entities.TelegramUser{}, user.ChatID)
	return result.Error
}
