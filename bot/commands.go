package bot

import (
	"fmt"

	"lotteryledger/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func lotteryConfigOptions(required bool) []*discordgo.ApplicationCommandOption {
	minPrice := float64(1)
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "price",
			Description: "Ticket price in bits",
			Required:    required,
			MinValue:    &minPrice,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "capacity",
			Description: "Tickets sold before the round settles",
			Required:    required,
			MinValue:    &minPrice,
		},
	}
}

// lotteryCommands returns the slash commands the bot registers
func lotteryCommands() []*discordgo.ApplicationCommand {
	minAmount := float64(1)
	minLimit := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "lottery",
			Description: "Fixed-price lottery where the last ticket takes the pool",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create this server's lottery (you become its owner)",
					Options:     lotteryConfigOptions(false),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Open ticket sales (owner only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "buy",
					Description: "Buy one ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Payment in bits, must equal the ticket price",
							Required:    true,
							MinValue:    &minAmount,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Prepare a new round after the pool was paid out (owner only)",
					Options:     lotteryConfigOptions(false),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Post the lottery in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Show recent payouts",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "limit",
							Description: fmt.Sprintf("Number of rounds to show (max %d)", common.MaxHistoryLimit),
							MinValue:    &minLimit,
							MaxValue:    float64(common.MaxHistoryLimit),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "balance",
					Description: "Check your balance",
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range lotteryCommands() {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd); err != nil {
			return fmt.Errorf("cannot create '%v' command: %w", cmd.Name, err)
		}
		log.Infof("Registered command: %s", cmd.Name)
	}

	return nil
}
