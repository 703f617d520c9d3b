package lottery

import (
	"context"
	"fmt"
	"strconv"

	"lotteryledger/application"
	"lotteryledger/bot/common"
	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"
	"lotteryledger/infrastructure/observability"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Settings holds the defaults the lottery commands fall back on
type Settings struct {
	StartingBalance       int64
	DefaultTicketPrice    int64
	DefaultMaxTicketCount int64
}

// Feature represents the lottery feature
type Feature struct {
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory
	settings   Settings
	cards      *CardRenderer
}

// NewFeature creates a new lottery feature instance
func NewFeature(session *discordgo.Session, uowFactory application.UnitOfWorkFactory, settings Settings) (*Feature, error) {
	cards, err := NewCardRenderer()
	if err != nil {
		return nil, err
	}

	return &Feature{
		session:    session,
		uowFactory: uowFactory,
		settings:   settings,
		cards:      cards,
	}, nil
}

// HandleCommand routes /lottery subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please choose a lottery subcommand")
		return
	}

	sub := options[0]
	switch sub.Name {
	case "create":
		f.handleCreate(s, i, sub.Options)
	case "start":
		f.handleStart(s, i)
	case "buy":
		f.handleBuy(s, i, sub.Options)
	case "reset":
		f.handleReset(s, i, sub.Options)
	case "status":
		f.handleStatus(s, i)
	case "history":
		f.handleHistory(s, i, sub.Options)
	case "balance":
		f.handleBalance(s, i)
	default:
		common.RespondWithError(s, i, fmt.Sprintf("Unknown lottery subcommand: %s", sub.Name))
	}
}

// HandleInteraction handles lottery button clicks
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		log.Warnf("Unknown interaction type in lottery: %v", i.Type)
		return
	}

	customID := i.MessageComponentData().CustomID
	if _, _, err := ParseBuyButtonID(customID); err == nil {
		f.handleBuyButton(s, i)
		return
	}

	common.RespondWithError(s, i, "Unknown lottery interaction")
}

// UpdateLotteryMessage refreshes the tracked lottery message (implements application.LotteryPoster)
func (f *Feature) UpdateLotteryMessage(ctx context.Context, lottery *entities.Lottery) error {
	if !lottery.HasMessage() {
		return nil
	}

	card, err := f.renderCard(lottery)
	if err != nil {
		return err
	}

	embed := CreateLotteryEmbed(lottery, card.URL())
	components := CreateLotteryComponents(lottery)
	attachments := []*discordgo.MessageAttachment{}

	_, err = f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:     strconv.FormatInt(*lottery.ChannelID, 10),
		ID:          strconv.FormatInt(*lottery.MessageID, 10),
		Embeds:      &[]*discordgo.MessageEmbed{embed},
		Components:  &components,
		Files:       []*discordgo.File{card.File()},
		Attachments: &attachments,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to update lottery message: %w", err)
	}

	return nil
}

// AnnounceSettlement posts the settlement below the lottery message (implements application.LotteryPoster)
func (f *Feature) AnnounceSettlement(ctx context.Context, lottery *entities.Lottery, ended events.LotteryEndedEvent) error {
	if lottery.ChannelID == nil {
		log.WithField("guild", lottery.GuildID).Debug("Lottery has no channel, skipping settlement announcement")
		return nil
	}

	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{CreateSettlementEmbed(lottery, ended)},
	}
	if lottery.MessageID != nil {
		send.Reference = &discordgo.MessageReference{
			MessageID: strconv.FormatInt(*lottery.MessageID, 10),
			ChannelID: strconv.FormatInt(*lottery.ChannelID, 10),
		}
	}

	if _, err := f.session.ChannelMessageSendComplex(strconv.FormatInt(*lottery.ChannelID, 10), send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to announce settlement: %w", err)
	}

	log.WithFields(log.Fields{
		"guild":  lottery.GuildID,
		"round":  ended.Round,
		"payee":  ended.PayeeDiscordID,
		"amount": ended.Amount,
	}).Info("Announced lottery settlement")
	return nil
}

func (f *Feature) renderCard(lottery *entities.Lottery) (*common.Attachment, error) {
	data, err := f.cards.Render(lottery)
	if err != nil {
		return nil, fmt.Errorf("failed to render lottery card: %w", err)
	}
	return &common.Attachment{Name: CardFileName, Data: data}, nil
}

// withGuildUnitOfWork runs fn in a guild-scoped transaction and commits when it succeeds
func (f *Feature) withGuildUnitOfWork(ctx context.Context, guildID int64, fn func(uow application.UnitOfWork) error) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// recordRejection counts refused lottery operations by kind
func recordRejection(err error) {
	kind := observability.ClassifyRejection(err)
	if kind == observability.RejectionOther {
		return
	}
	observability.GetMetrics().RecordOperationRejected(kind)
}
