package common

import (
	"fmt"
	"strings"
	"time"

	"lotteryledger/domain/entities"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	sign := ""
	if balance < 0 {
		sign = "-"
		balance = -balance
	}

	str := fmt.Sprintf("%d", balance)
	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatLotteryState returns a display label for a lottery state
func FormatLotteryState(state entities.LotteryState) string {
	switch state {
	case entities.LotteryStateCreated:
		return "Waiting to start"
	case entities.LotteryStateStarted:
		return "Selling tickets"
	case entities.LotteryStateEnded:
		return "Ended"
	default:
		return string(state)
	}
}

// FormatMention renders a Discord user mention
func FormatMention(discordID int64) string {
	return fmt.Sprintf("<@%d>", discordID)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDiscordMessageLink creates a Discord message link from guild, channel, and message IDs
func FormatDiscordMessageLink(guildID, channelID, messageID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, messageID)
}
