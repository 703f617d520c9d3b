package repository

import (
	"lotteryledger/application"
	"lotteryledger/database"
	"lotteryledger/domain/interfaces"
)

// CreateTestUnitOfWork creates a unit of work for tests with the provided transactional publisher
func CreateTestUnitOfWork(db *database.DB, guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return NewUnitOfWorkFactory(db).CreateForGuildWithPublisher(guildID, transactionalPublisher)
}
