package lottery

import (
	"context"
	"fmt"
	"strconv"

	"lotteryledger/application"
	"lotteryledger/bot/common"
	"lotteryledger/domain/entities"
	"lotteryledger/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// caller identifies who triggered an interaction and in which guild
type caller struct {
	guildID   int64
	discordID int64
	username  string
}

func parseCaller(i *discordgo.InteractionCreate) (caller, error) {
	if i.Member == nil || i.Member.User == nil {
		return caller{}, common.NewUserError("Lottery commands only work inside a server", "interaction without guild member")
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return caller{}, common.NewSystemError(err, "invalid guild ID")
	}
	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		return caller{}, common.NewSystemError(err, "invalid user ID")
	}

	return caller{guildID: guildID, discordID: discordID, username: i.Member.User.Username}, nil
}

func intOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int64) int64 {
	for _, opt := range options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return fallback
}

// handleCreate constructs the guild's lottery with the caller as owner
func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	price := intOption(options, "price", f.settings.DefaultTicketPrice)
	capacity := intOption(options, "capacity", f.settings.DefaultMaxTicketCount)

	var lottery *entities.Lottery
	err = f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		var err error
		lottery, err = application.NewLotteryService(uow, c.guildID).CreateLottery(ctx, c.discordID, price, capacity)
		return err
	})
	if err != nil {
		recordRejection(err)
		common.HandleError(s, i, common.MapServiceError(err, "failed to create lottery"), false)
		return
	}

	embed := CreateLotteryEmbed(lottery, "")
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Failed to respond to lottery create: %v", err)
	}
}

// handleStart opens ticket sales
func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var lottery *entities.Lottery
	err = f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		var err error
		lottery, err = application.NewLotteryService(uow, c.guildID).StartLottery(ctx, c.discordID)
		return err
	})
	if err != nil {
		recordRejection(err)
		common.HandleError(s, i, common.MapServiceError(err, "failed to start lottery"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateLotteryEmbed(lottery, ""), CreateLotteryComponents(lottery), false); err != nil {
		log.Errorf("Failed to respond to lottery start: %v", err)
	}
}

// handleReset reinitializes an ended lottery
func (f *Feature) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	price := intOption(options, "price", f.settings.DefaultTicketPrice)
	capacity := intOption(options, "capacity", f.settings.DefaultMaxTicketCount)

	var lottery *entities.Lottery
	err = f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		var err error
		lottery, err = application.NewLotteryService(uow, c.guildID).ResetLottery(ctx, c.discordID, price, capacity)
		return err
	})
	if err != nil {
		recordRejection(err)
		common.HandleError(s, i, common.MapServiceError(err, "failed to reset lottery"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateLotteryEmbed(lottery, ""), nil, true); err != nil {
		log.Errorf("Failed to respond to lottery reset: %v", err)
	}
}

// handleBuy buys one ticket with the payment given on the command
func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	payment := intOption(options, "amount", 0)
	f.buyAndRespond(s, i, payment)
}

// handleBuyButton buys one ticket paying the price encoded in the button
func (f *Feature) handleBuyButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, price, err := ParseBuyButtonID(i.MessageComponentData().CustomID)
	if err != nil {
		common.RespondWithError(s, i, "Invalid button")
		return
	}
	f.buyAndRespond(s, i, price)
}

func (f *Feature) buyAndRespond(s *discordgo.Session, i *discordgo.InteractionCreate, payment int64) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	result, err := f.buyTicket(ctx, c, payment)
	if err != nil {
		recordRejection(err)
		common.HandleError(s, i, common.MapServiceError(err, "failed to buy lottery ticket"), true)
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, CreatePurchaseConfirmationEmbed(result), nil, nil, true); err != nil {
		log.Errorf("Failed to send purchase confirmation: %v", err)
	}
}

// buyTicket ensures the buyer has an account and buys in one transaction
func (f *Feature) buyTicket(ctx context.Context, c caller, payment int64) (*interfaces.TicketPurchaseResult, error) {
	var result *interfaces.TicketPurchaseResult
	err := f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		userService := application.NewUserService(uow, c.guildID, f.settings.StartingBalance)
		if _, err := userService.GetOrCreateUser(ctx, c.discordID, c.username); err != nil {
			return err
		}

		var err error
		result, err = application.NewLotteryService(uow, c.guildID).BuyTicket(ctx, c.discordID, payment)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild":    c.guildID,
		"buyer":    c.discordID,
		"payment":  payment,
		"position": result.Ticket.Position,
		"settled":  result.Settlement != nil,
	}).Info("Lottery ticket bought")
	return result, nil
}

// handleStatus posts the lottery message in the channel and tracks it for updates
func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	var lottery *entities.Lottery
	err = f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		var err error
		lottery, err = application.NewLotteryService(uow, c.guildID).GetLottery(ctx)
		return err
	})
	if err != nil {
		common.HandleError(s, i, common.MapServiceError(err, "failed to load lottery"), true)
		return
	}

	card, err := f.renderCard(lottery)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to render lottery card"), true)
		return
	}

	msg, err := common.FollowUpWithEmbed(s, i, CreateLotteryEmbed(lottery, card.URL()), CreateLotteryComponents(lottery), card, false)
	if err != nil {
		log.Errorf("Failed to post lottery status: %v", err)
		return
	}

	if err := f.trackMessage(ctx, c.guildID, msg); err != nil {
		log.WithFields(log.Fields{
			"guild": c.guildID,
			"error": err,
		}).Warn("Failed to track lottery message")
	}
}

// trackMessage stores the posted message so lifecycle events can refresh it
func (f *Feature) trackMessage(ctx context.Context, guildID int64, msg *discordgo.Message) error {
	channelID, err := strconv.ParseInt(msg.ChannelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid channel ID: %w", err)
	}
	messageID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	return f.withGuildUnitOfWork(ctx, guildID, func(uow application.UnitOfWork) error {
		return application.NewLotteryService(uow, guildID).SetLotteryMessage(ctx, channelID, messageID)
	})
}

// handleHistory lists recent settlements
func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	limit := int(intOption(options, "limit", common.DefaultHistoryLimit))
	if limit < 1 || limit > common.MaxHistoryLimit {
		common.RespondWithError(s, i, fmt.Sprintf("Limit must be between 1 and %d", common.MaxHistoryLimit))
		return
	}

	var settlements []*entities.LotterySettlement
	err = f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		var err error
		settlements, err = application.NewLotteryService(uow, c.guildID).GetSettlements(ctx, limit)
		return err
	})
	if err != nil {
		common.HandleError(s, i, common.MapServiceError(err, "failed to load lottery history"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateHistoryEmbed(settlements), nil, true); err != nil {
		log.Errorf("Failed to respond with lottery history: %v", err)
	}
}

// handleBalance shows the caller's balance, creating the account on first use
func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	c, err := parseCaller(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	var user *entities.User
	var history []*entities.BalanceHistory
	err = f.withGuildUnitOfWork(ctx, c.guildID, func(uow application.UnitOfWork) error {
		var err error
		user, err = application.NewUserService(uow, c.guildID, f.settings.StartingBalance).GetOrCreateUser(ctx, c.discordID, c.username)
		if err != nil {
			return err
		}
		history, err = uow.BalanceHistoryRepository().GetByUser(ctx, c.discordID, common.DefaultHistoryLimit)
		if err != nil {
			return fmt.Errorf("failed to get balance history: %w", err)
		}
		return nil
	})
	if err != nil {
		common.HandleError(s, i, common.MapServiceError(err, "failed to load balance"), false)
		return
	}

	if err := common.RespondWithEmbed(s, i, CreateBalanceEmbed(user, history), nil, true); err != nil {
		log.Errorf("Failed to respond with balance: %v", err)
	}
}
