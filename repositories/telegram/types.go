package telegram

import (
	"regwatch/models/entities"
	"regwatch/utils/databases"
)

type Repository interface {
	SaveOrUpdate(user entities.TelegramUser) error
	Delete(user entities.TelegramUser) error
	FetchAll() ([]entities.TelegramUser, error)
}

type Impl struct {
	db databases.SqlConnection
}
