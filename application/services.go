package application

import (
	"lotteryledger/domain/interfaces"
	"lotteryledger/domain/services"
)

// NewLotteryService builds a lottery service on the repositories of a started UnitOfWork
func NewLotteryService(uow UnitOfWork, guildID int64) interfaces.LotteryService {
	return services.NewLotteryService(
		guildID,
		uow.LotteryRepository(),
		uow.LotteryTicketRepository(),
		uow.LotterySettlementRepository(),
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
	)
}

// NewUserService builds a user service on the repositories of a started UnitOfWork
func NewUserService(uow UnitOfWork, guildID, startingBalance int64) interfaces.UserService {
	return services.NewUserService(
		guildID,
		startingBalance,
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
	)
}
