package common

import (
	"testing"
	"time"

	"lotteryledger/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		expected string
	}{
		{"zero", 0, "0"},
		{"hundreds", 999, "999"},
		{"thousand", 1000, "1,000"},
		{"million", 1234567, "1,234,567"},
		{"negative", -25000, "-25,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBalance(tt.balance))
		})
	}
}

func TestFormatLotteryState(t *testing.T) {
	assert.Equal(t, "Waiting to start", FormatLotteryState(entities.LotteryStateCreated))
	assert.Equal(t, "Selling tickets", FormatLotteryState(entities.LotteryStateStarted))
	assert.Equal(t, "Ended", FormatLotteryState(entities.LotteryStateEnded))
	assert.Equal(t, "paused", FormatLotteryState(entities.LotteryState("paused")))
}

func TestFormatDiscordHelpers(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(ts, "R"))
	assert.Equal(t, "<@42>", FormatMention(42))
	assert.Equal(t, "https://discord.com/channels/1/2/3", FormatDiscordMessageLink(1, 2, 3))
}
