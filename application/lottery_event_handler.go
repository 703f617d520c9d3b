package application

import (
	"context"
	"errors"
	"fmt"

	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"
	"lotteryledger/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// LotteryPoster renders lottery state to Discord
type LotteryPoster interface {
	// UpdateLotteryMessage refreshes the guild's tracked lottery message
	UpdateLotteryMessage(ctx context.Context, lottery *entities.Lottery) error

	// AnnounceSettlement posts the result of a settled round
	AnnounceSettlement(ctx context.Context, lottery *entities.Lottery, ended events.LotteryEndedEvent) error
}

// EventSubscriber delivers events of a type to a handler
type EventSubscriber interface {
	Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error
}

// LotteryEventHandler observes lottery lifecycle events.
// It records metrics and keeps the guild's Discord message current.
type LotteryEventHandler struct {
	uowFactory    UnitOfWorkFactory
	lotteryPoster LotteryPoster
}

// NewLotteryEventHandler creates a new LotteryEventHandler
func NewLotteryEventHandler(uowFactory UnitOfWorkFactory, lotteryPoster LotteryPoster) *LotteryEventHandler {
	return &LotteryEventHandler{
		uowFactory:    uowFactory,
		lotteryPoster: lotteryPoster,
	}
}

// HandleLotteryEvent dispatches one lottery event
func (h *LotteryEventHandler) HandleLotteryEvent(ctx context.Context, event events.Event) error {
	switch event.Type() {
	case events.EventTypeLotteryCreated:
		e, err := AssertEventType[events.LotteryCreatedEvent](event)
		if err != nil {
			return err
		}
		return h.refresh(ctx, e.GuildID)

	case events.EventTypeLotteryStarted:
		e, err := AssertEventType[events.LotteryStartedEvent](event)
		if err != nil {
			return err
		}
		return h.refresh(ctx, e.GuildID)

	case events.EventTypeLotteryTicketBought:
		e, err := AssertEventType[events.LotteryTicketBoughtEvent](event)
		if err != nil {
			return err
		}
		observability.GetMetrics().RecordTicketBought()
		return h.refresh(ctx, e.GuildID)

	case events.EventTypeLotteryEnded:
		e, err := AssertEventType[events.LotteryEndedEvent](event)
		if err != nil {
			return err
		}
		return h.handleEnded(ctx, e)

	case events.EventTypeLotteryReset:
		e, err := AssertEventType[events.LotteryResetEvent](event)
		if err != nil {
			return err
		}
		return h.refresh(ctx, e.GuildID)

	default:
		return fmt.Errorf("unexpected event type %s", event.Type())
	}
}

func (h *LotteryEventHandler) handleEnded(ctx context.Context, e events.LotteryEndedEvent) error {
	metrics := observability.GetMetrics()
	metrics.RecordTicketBought()
	metrics.RecordRoundEnded(e.Amount)

	log.WithFields(log.Fields{
		"guild":     e.GuildID,
		"lotteryID": e.LotteryID,
		"round":     e.Round,
		"payee":     e.PayeeDiscordID,
		"amount":    e.Amount,
	}).Info("Lottery round settled")

	lottery, err := h.loadLottery(ctx, e.GuildID)
	if err != nil {
		return err
	}
	if lottery == nil {
		return nil
	}

	if err := h.lotteryPoster.UpdateLotteryMessage(ctx, lottery); err != nil {
		log.WithFields(log.Fields{
			"guild": e.GuildID,
			"error": err,
		}).Warn("Failed to refresh lottery message")
	}

	if err := h.lotteryPoster.AnnounceSettlement(ctx, lottery, e); err != nil {
		return fmt.Errorf("failed to announce settlement: %w", err)
	}
	return nil
}

func (h *LotteryEventHandler) refresh(ctx context.Context, guildID int64) error {
	lottery, err := h.loadLottery(ctx, guildID)
	if err != nil {
		return err
	}
	if lottery == nil || !lottery.HasMessage() {
		return nil
	}

	if err := h.lotteryPoster.UpdateLotteryMessage(ctx, lottery); err != nil {
		return fmt.Errorf("failed to update lottery message: %w", err)
	}
	return nil
}

// loadLottery reads the guild's lottery in a read-only transaction.
// A missing lottery is not an error: it may have been reset and recreated since.
func (h *LotteryEventHandler) loadLottery(ctx context.Context, guildID int64) (*entities.Lottery, error) {
	uow := h.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := NewLotteryService(uow, guildID).GetLottery(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrLotteryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	return lottery, nil
}

// RegisterLotterySubscriptions subscribes the handler to every lottery lifecycle event
func RegisterLotterySubscriptions(subscriber EventSubscriber, handler *LotteryEventHandler) error {
	eventTypes := []events.EventType{
		events.EventTypeLotteryCreated,
		events.EventTypeLotteryStarted,
		events.EventTypeLotteryTicketBought,
		events.EventTypeLotteryEnded,
		events.EventTypeLotteryReset,
	}

	for _, eventType := range eventTypes {
		if err := subscriber.Subscribe(eventType, handler.HandleLotteryEvent); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}
