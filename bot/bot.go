package bot

import (
	"fmt"
	"strings"

	"lotteryledger/application"
	"lotteryledger/bot/features/lottery"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config     Config
	session    *discordgo.Session
	uowFactory application.UnitOfWorkFactory

	lottery *lottery.Feature
}

// New opens the Discord session and registers the lottery commands
func New(config Config, uowFactory application.UnitOfWorkFactory, settings lottery.Settings) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	lotteryFeature, err := lottery.NewFeature(dg, uowFactory, settings)
	if err != nil {
		return nil, fmt.Errorf("error creating lottery feature: %w", err)
	}

	bot := &Bot{
		config:     config,
		session:    dg,
		uowFactory: uowFactory,
		lottery:    lotteryFeature,
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guild", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

// GetLotteryPoster returns the poster lifecycle events are rendered through
func (b *Bot) GetLotteryPoster() application.LotteryPoster {
	return b.lottery
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "lottery":
		b.lottery.HandleCommand(s, i)
	}
}

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, lottery.CustomIDPrefix):
		b.lottery.HandleInteraction(s, i)
	default:
		log.Debugf("Ignoring component interaction %s", customID)
	}
}
