package lottery

import (
	"fmt"
	"strconv"
	"strings"

	"lotteryledger/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// CustomIDPrefix routes component interactions to this feature
const CustomIDPrefix = "lottery_"

const buyButtonPrefix = CustomIDPrefix + "buy_"

// BuyButtonID encodes the lottery and the price shown on the button.
// Clicking pays exactly that price, so a button rendered before a reset
// is refused if the price has changed since.
func BuyButtonID(lotteryID, ticketPrice int64) string {
	return fmt.Sprintf("%s%d_%d", buyButtonPrefix, lotteryID, ticketPrice)
}

// ParseBuyButtonID extracts the lottery ID and price from a buy button custom ID
func ParseBuyButtonID(customID string) (lotteryID, ticketPrice int64, err error) {
	rest, ok := strings.CutPrefix(customID, buyButtonPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("not a buy button: %q", customID)
	}

	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed buy button: %q", customID)
	}

	lotteryID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lottery ID in %q: %w", customID, err)
	}
	ticketPrice, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid price in %q: %w", customID, err)
	}

	return lotteryID, ticketPrice, nil
}

// CreateLotteryComponents creates the button row for the lottery message
func CreateLotteryComponents(lottery *entities.Lottery) []discordgo.MessageComponent {
	if !lottery.CanPurchaseTickets() {
		label := "Not started"
		if lottery.State == entities.LotteryStateEnded {
			label = "Round settled"
		}

		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    label,
						Style:    discordgo.SecondaryButton,
						CustomID: fmt.Sprintf("%sclosed_%d", CustomIDPrefix, lottery.ID),
						Disabled: true,
					},
				},
			},
		}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("Buy Ticket (%d bits)", lottery.TicketPrice),
					Style:    discordgo.PrimaryButton,
					CustomID: BuyButtonID(lottery.ID, lottery.TicketPrice),
					Emoji: &discordgo.ComponentEmoji{
						Name: "🎟️",
					},
				},
			},
		},
	}
}
