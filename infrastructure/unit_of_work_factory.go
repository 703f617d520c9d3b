package infrastructure

import (
	"context"
	"sync"

	"lotteryledger/application"
	"lotteryledger/database"
	"lotteryledger/domain/events"
	"lotteryledger/domain/interfaces"
	"lotteryledger/repository"

	log "github.com/sirupsen/logrus"
)

type repositoryFactory interface {
	CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
}

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Each UnitOfWork gets its own transactional publisher that forwards to
// eventPublisher after commit. A nil eventPublisher delivers events to
// local handlers only.
type UnitOfWorkFactory struct {
	repoFactory    repositoryFactory
	eventPublisher interfaces.EventPublisher

	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalEventHandler
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return newUnitOfWorkFactory(repository.NewUnitOfWorkFactory(db), eventPublisher)
}

func newUnitOfWorkFactory(repoFactory repositoryFactory, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
		localHandlers:  make(map[events.EventType][]LocalEventHandler),
	}
}

// RegisterLocalHandler registers a handler invoked in this process after
// every committed transaction that published an event of the given type
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.localHandlers[eventType] = append(f.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(f.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// CreateForGuild creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	transactionalPublisher := NewNATSTransactionalPublisher(f.eventPublisher)

	f.mu.RLock()
	for eventType, handlers := range f.localHandlers {
		for _, handler := range handlers {
			transactionalPublisher.RegisterLocalHandler(eventType, handler)
		}
	}
	f.mu.RUnlock()

	return &timedUnitOfWork{
		UnitOfWork: f.repoFactory.CreateForGuildWithPublisher(guildID, transactionalPublisher),
	}
}

// Subscribe registers handler as a local handler, so the factory can stand in
// for the NATS subscriber when events are delivered in-process
func (f *UnitOfWorkFactory) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	f.RegisterLocalHandler(eventType, handler)
	return nil
}
