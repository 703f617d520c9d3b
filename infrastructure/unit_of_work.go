package infrastructure

import (
	"context"

	"lotteryledger/application"
	"lotteryledger/infrastructure/observability"
)

// timedUnitOfWork wraps the repository UnitOfWork and records how long each
// transaction stays open
type timedUnitOfWork struct {
	application.UnitOfWork
	stop func()
}

// Begin starts a new transaction and its timer
func (u *timedUnitOfWork) Begin(ctx context.Context) error {
	if err := u.UnitOfWork.Begin(ctx); err != nil {
		return err
	}
	u.stop = observability.GetMetrics().MeasureDatabaseQuery("unit_of_work", "transaction")
	return nil
}

// Commit commits the transaction; pending events flush inside the repository layer
func (u *timedUnitOfWork) Commit() error {
	defer u.observe()
	return u.UnitOfWork.Commit()
}

// Rollback rolls back the transaction and discards pending events
func (u *timedUnitOfWork) Rollback() error {
	defer u.observe()
	return u.UnitOfWork.Rollback()
}

func (u *timedUnitOfWork) observe() {
	if u.stop != nil {
		u.stop()
		u.stop = nil
	}
}
