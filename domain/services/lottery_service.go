package services

import (
	"context"
	"fmt"

	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"
	"lotteryledger/domain/interfaces"
	"lotteryledger/domain/utils"

	log "github.com/sirupsen/logrus"
)

// lotteryService implements business logic for a guild's lottery
type lotteryService struct {
	guildID            int64
	lotteryRepo        interfaces.LotteryRepository
	lotteryTicketRepo  interfaces.LotteryTicketRepository
	settlementRepo     interfaces.LotterySettlementRepository
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewLotteryService creates a new lottery service for one guild
func NewLotteryService(
	guildID int64,
	lotteryRepo interfaces.LotteryRepository,
	lotteryTicketRepo interfaces.LotteryTicketRepository,
	settlementRepo interfaces.LotterySettlementRepository,
	userRepo interfaces.UserRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.LotteryService {
	return &lotteryService{
		guildID:            guildID,
		lotteryRepo:        lotteryRepo,
		lotteryTicketRepo:  lotteryTicketRepo,
		settlementRepo:     settlementRepo,
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

// CreateLottery constructs the guild's lottery with the caller as owner
func (s *lotteryService) CreateLottery(ctx context.Context, ownerDiscordID, ticketPrice, maxTicketCount int64) (*entities.Lottery, error) {
	existing, err := s.lotteryRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrLotteryExists
	}

	lottery, err := entities.NewLottery(s.guildID, ownerDiscordID, ticketPrice, maxTicketCount)
	if err != nil {
		return nil, err
	}

	if err := s.lotteryRepo.Create(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}

	if err := s.eventPublisher.Publish(events.LotteryCreatedEvent{
		LotteryID:      lottery.ID,
		GuildID:        lottery.GuildID,
		OwnerDiscordID: lottery.OwnerDiscordID,
		TicketPrice:    lottery.TicketPrice,
		MaxTicketCount: lottery.MaxTicketCount,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish lottery created event: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":         s.guildID,
		"lottery_id":       lottery.ID,
		"owner":            ownerDiscordID,
		"ticket_price":     ticketPrice,
		"max_ticket_count": maxTicketCount,
	}).Info("Lottery created")

	return lottery, nil
}

// StartLottery opens ticket sales
func (s *lotteryService) StartLottery(ctx context.Context, callerDiscordID int64) (*entities.Lottery, error) {
	lottery, err := s.lockLottery(ctx)
	if err != nil {
		return nil, err
	}

	if err := lottery.Start(callerDiscordID); err != nil {
		return nil, err
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.eventPublisher.Publish(events.LotteryStartedEvent{
		LotteryID:      lottery.ID,
		GuildID:        lottery.GuildID,
		Round:          lottery.Round,
		TicketPrice:    lottery.TicketPrice,
		MaxTicketCount: lottery.MaxTicketCount,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish lottery started event: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   s.guildID,
		"lottery_id": lottery.ID,
		"round":      lottery.Round,
	}).Info("Lottery started")

	return lottery, nil
}

// BuyTicket debits the buyer, records the ticket and settles the pool when the
// purchase fills the lottery. The lottery row stays locked for the whole call so
// concurrent purchases in one guild are applied one at a time.
func (s *lotteryService) BuyTicket(ctx context.Context, buyerDiscordID, payment int64) (*interfaces.TicketPurchaseResult, error) {
	lottery, err := s.lockLottery(ctx)
	if err != nil {
		return nil, err
	}

	purchase, err := lottery.BuyTicket(buyerDiscordID, payment)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByDiscordID(ctx, buyerDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.ErrUserNotFound
	}
	if err := user.ValidateAmount(payment); err != nil {
		return nil, err
	}

	lotteryType := entities.RelatedTypeLottery
	newBalance := user.CalculateNewBalance(-payment)
	if err := s.userRepo.UpdateBalance(ctx, buyerDiscordID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update user balance: %w", err)
	}

	history := &entities.BalanceHistory{
		DiscordID:       buyerDiscordID,
		GuildID:         s.guildID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    -payment,
		TransactionType: entities.TransactionTypeLottoTicket,
		TransactionMetadata: map[string]any{
			"lottery_id": lottery.ID,
			"round":      lottery.Round,
			"position":   purchase.Position,
		},
		RelatedID:   &lottery.ID,
		RelatedType: &lotteryType,
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	ticket := &entities.LotteryTicket{
		LotteryID:        lottery.ID,
		GuildID:          s.guildID,
		Round:            lottery.Round,
		Position:         purchase.Position,
		DiscordID:        buyerDiscordID,
		PurchasePrice:    payment,
		BalanceHistoryID: history.ID,
	}
	if err := s.lotteryTicketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	result := &interfaces.TicketPurchaseResult{
		Lottery:    lottery,
		Ticket:     ticket,
		NewBalance: newBalance,
	}

	if purchase.Ended() {
		balance, err := s.settle(ctx, lottery, purchase.Settlement, newBalance)
		if err != nil {
			return nil, err
		}
		result.Settlement = purchase.Settlement
		result.NewBalance = balance
	} else {
		if err := s.eventPublisher.Publish(events.LotteryTicketBoughtEvent{
			LotteryID:      lottery.ID,
			GuildID:        lottery.GuildID,
			Round:          lottery.Round,
			BuyerDiscordID: buyerDiscordID,
			Price:          payment,
			TicketCount:    lottery.TicketCount(),
			MaxTicketCount: lottery.MaxTicketCount,
		}); err != nil {
			return nil, fmt.Errorf("failed to publish ticket bought event: %w", err)
		}
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   s.guildID,
		"lottery_id": lottery.ID,
		"round":      lottery.Round,
		"buyer":      buyerDiscordID,
		"position":   purchase.Position,
		"ended":      purchase.Ended(),
	}).Info("Lottery ticket purchased")

	return result, nil
}

// settle credits the pool to the payee and records the settlement.
// payeeBalance is the payee's balance after paying for the final ticket.
func (s *lotteryService) settle(ctx context.Context, lottery *entities.Lottery, settlement *entities.LotterySettlement, payeeBalance int64) (int64, error) {
	newBalance := payeeBalance + settlement.Amount
	if err := s.userRepo.UpdateBalance(ctx, settlement.PayeeDiscordID, newBalance); err != nil {
		return 0, fmt.Errorf("failed to credit payout: %w", err)
	}

	lotteryType := entities.RelatedTypeLottery
	history := &entities.BalanceHistory{
		DiscordID:       settlement.PayeeDiscordID,
		GuildID:         s.guildID,
		BalanceBefore:   payeeBalance,
		BalanceAfter:    newBalance,
		ChangeAmount:    settlement.Amount,
		TransactionType: entities.TransactionTypeLottoPayout,
		TransactionMetadata: map[string]any{
			"lottery_id":   lottery.ID,
			"round":        settlement.Round,
			"ticket_count": settlement.TicketCount,
		},
		RelatedID:   &lottery.ID,
		RelatedType: &lotteryType,
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return 0, fmt.Errorf("failed to record payout: %w", err)
	}

	if err := s.settlementRepo.Create(ctx, settlement); err != nil {
		return 0, fmt.Errorf("failed to create settlement: %w", err)
	}

	if err := s.eventPublisher.Publish(events.LotteryEndedEvent{
		LotteryID:      lottery.ID,
		GuildID:        lottery.GuildID,
		Round:          settlement.Round,
		PayeeDiscordID: settlement.PayeeDiscordID,
		Amount:         settlement.Amount,
		TicketCount:    settlement.TicketCount,
	}); err != nil {
		return 0, fmt.Errorf("failed to publish lottery ended event: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":   s.guildID,
		"lottery_id": lottery.ID,
		"round":      settlement.Round,
		"payee":      settlement.PayeeDiscordID,
		"amount":     settlement.Amount,
	}).Info("Lottery settled")

	return newBalance, nil
}

// ResetLottery reinitializes an ended lottery for a new round
func (s *lotteryService) ResetLottery(ctx context.Context, callerDiscordID, newTicketPrice, newMaxTicketCount int64) (*entities.Lottery, error) {
	lottery, err := s.lockLottery(ctx)
	if err != nil {
		return nil, err
	}

	if err := lottery.Reset(callerDiscordID, newTicketPrice, newMaxTicketCount); err != nil {
		return nil, err
	}

	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to update lottery: %w", err)
	}

	if err := s.eventPublisher.Publish(events.LotteryResetEvent{
		LotteryID:      lottery.ID,
		GuildID:        lottery.GuildID,
		Round:          lottery.Round,
		TicketPrice:    lottery.TicketPrice,
		MaxTicketCount: lottery.MaxTicketCount,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish lottery reset event: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":         s.guildID,
		"lottery_id":       lottery.ID,
		"round":            lottery.Round,
		"ticket_price":     newTicketPrice,
		"max_ticket_count": newMaxTicketCount,
	}).Info("Lottery reset")

	return lottery, nil
}

// GetLottery returns the guild's lottery with the current round's participants loaded
func (s *lotteryService) GetLottery(ctx context.Context) (*entities.Lottery, error) {
	lottery, err := s.lotteryRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}

	if err := s.loadParticipants(ctx, lottery); err != nil {
		return nil, err
	}

	return lottery, nil
}

// GetSettlements returns recent settlements of the guild's lottery
func (s *lotteryService) GetSettlements(ctx context.Context, limit int) ([]*entities.LotterySettlement, error) {
	lottery, err := s.lotteryRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}

	settlements, err := s.settlementRepo.GetByLottery(ctx, lottery.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlements: %w", err)
	}

	return settlements, nil
}

// SetLotteryMessage records the Discord message that displays the lottery
func (s *lotteryService) SetLotteryMessage(ctx context.Context, channelID, messageID int64) error {
	lottery, err := s.lotteryRepo.GetCurrentForUpdate(ctx)
	if err != nil {
		return fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return entities.ErrLotteryNotFound
	}

	lottery.SetMessage(channelID, messageID)
	if err := s.lotteryRepo.Update(ctx, lottery); err != nil {
		return fmt.Errorf("failed to update lottery message: %w", err)
	}

	return nil
}

// lockLottery loads the guild's lottery under a row lock with its participants
func (s *lotteryService) lockLottery(ctx context.Context) (*entities.Lottery, error) {
	lottery, err := s.lotteryRepo.GetCurrentForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, entities.ErrLotteryNotFound
	}

	if err := s.loadParticipants(ctx, lottery); err != nil {
		return nil, err
	}

	return lottery, nil
}

func (s *lotteryService) loadParticipants(ctx context.Context, lottery *entities.Lottery) error {
	participants, err := s.lotteryTicketRepo.GetParticipants(ctx, lottery.ID, lottery.Round)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	if participants == nil {
		participants = []int64{}
	}
	lottery.Participants = participants
	return nil
}
