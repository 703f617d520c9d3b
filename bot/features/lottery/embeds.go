package lottery

import (
	"fmt"
	"strings"

	"lotteryledger/bot/common"
	"lotteryledger/domain/entities"
	"lotteryledger/domain/events"
	"lotteryledger/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

const maxParticipantsShown = 10

// formatParticipants lists ticket holders in order of their first purchase
func formatParticipants(participants []int64) string {
	if len(participants) == 0 {
		return "No tickets sold yet"
	}

	summary := entities.SummarizeParticipants(participants)
	shown := summary
	if len(shown) > maxParticipantsShown {
		shown = shown[:maxParticipantsShown]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, p := range shown {
		lines = append(lines, fmt.Sprintf("%s: %d ticket(s)", common.FormatMention(p.DiscordID), p.TicketCount))
	}
	if len(summary) > len(shown) {
		lines = append(lines, fmt.Sprintf("...and %d more", len(summary)-len(shown)))
	}
	return strings.Join(lines, "\n")
}

// CreateLotteryEmbed creates the main lottery embed. imageURL may be empty.
func CreateLotteryEmbed(lottery *entities.Lottery, imageURL string) *discordgo.MessageEmbed {
	color := common.ColorInfo
	switch lottery.State {
	case entities.LotteryStateStarted:
		color = common.ColorPrimary
	case entities.LotteryStateEnded:
		color = common.ColorGold
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Lottery - round %d", lottery.Round),
		Color:       color,
		Description: "Every ticket costs the same. The last ticket takes the whole pool.",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Status",
				Value:  common.FormatLotteryState(lottery.State),
				Inline: true,
			},
			{
				Name:   "Ticket Price",
				Value:  common.FormatBalance(lottery.TicketPrice) + " bits",
				Inline: true,
			},
			{
				Name:   "Tickets",
				Value:  fmt.Sprintf("%d / %d", lottery.TicketCount(), lottery.MaxTicketCount),
				Inline: true,
			},
			{
				Name:   "Pool",
				Value:  common.FormatBalance(lottery.Stakes()) + " bits",
				Inline: true,
			},
			{
				Name:   "Owner",
				Value:  common.FormatMention(lottery.OwnerDiscordID),
				Inline: true,
			},
			{
				Name:   "Participants",
				Value:  formatParticipants(lottery.Participants),
				Inline: false,
			},
		},
	}

	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	return embed
}

// CreatePurchaseConfirmationEmbed creates an ephemeral embed for a purchase
func CreatePurchaseConfirmationEmbed(result *interfaces.TicketPurchaseResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Ticket Purchased!",
		Color:       common.ColorSuccess,
		Description: fmt.Sprintf("You bought ticket #%d for %s bits", result.Ticket.Position, common.FormatBalance(result.Ticket.PurchasePrice)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "New Balance",
				Value:  common.FormatBalance(result.NewBalance),
				Inline: true,
			},
			{
				Name:   "Tickets Left",
				Value:  fmt.Sprintf("%d", result.Lottery.TicketsRemaining()),
				Inline: true,
			},
		},
	}

	if result.Settlement != nil {
		embed.Title = "You took the pool!"
		embed.Color = common.ColorGold
		embed.Description = fmt.Sprintf("Your ticket was the last one. %s bits were paid to you.", common.FormatBalance(result.Settlement.Amount))
	}

	return embed
}

// CreateSettlementEmbed announces the payee of a settled round
func CreateSettlementEmbed(lottery *entities.Lottery, ended events.LotteryEndedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Lottery round %d settled", ended.Round),
		Color:       common.ColorGold,
		Description: fmt.Sprintf("%s bought the last ticket and takes **%s bits**.", common.FormatMention(ended.PayeeDiscordID), common.FormatBalance(ended.Amount)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Tickets Sold",
				Value:  fmt.Sprintf("%d", ended.TicketCount),
				Inline: true,
			},
			{
				Name:   "Next Round",
				Value:  fmt.Sprintf("Waiting for %s to reset", common.FormatMention(lottery.OwnerDiscordID)),
				Inline: true,
			},
		},
	}
}

// CreateHistoryEmbed lists recent settlements, newest first
func CreateHistoryEmbed(settlements []*entities.LotterySettlement) *discordgo.MessageEmbed {
	description := "No rounds have been settled yet"
	if len(settlements) > 0 {
		lines := make([]string, 0, len(settlements))
		for _, s := range settlements {
			lines = append(lines, fmt.Sprintf("Round %d: %s took %s bits (%d tickets) %s",
				s.Round,
				common.FormatMention(s.PayeeDiscordID),
				common.FormatBalance(s.Amount),
				s.TicketCount,
				common.FormatDiscordTimestamp(s.SettledAt, "R"),
			))
		}
		description = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "Lottery History",
		Color:       common.ColorInfo,
		Description: description,
	}
}

// CreateBalanceEmbed shows a member's balance and recent changes
func CreateBalanceEmbed(user *entities.User, history []*entities.BalanceHistory) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Balance",
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Current",
				Value:  common.FormatBalance(user.Balance) + " bits",
				Inline: false,
			},
		},
	}

	if len(history) > 0 {
		lines := make([]string, 0, len(history))
		for _, h := range history {
			sign := ""
			if h.ChangeAmount > 0 {
				sign = "+"
			}
			lines = append(lines, fmt.Sprintf("%s%s (%s) %s",
				sign,
				common.FormatBalance(h.ChangeAmount),
				h.GetTransactionDescription(),
				common.FormatDiscordTimestamp(h.CreatedAt, "R"),
			))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent Changes",
			Value: strings.Join(lines, "\n"),
		})
	}

	return embed
}
