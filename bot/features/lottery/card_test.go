package lottery

import (
	"bytes"
	"image/png"
	"testing"

	"lotteryledger/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRenderer_Render(t *testing.T) {
	renderer, err := NewCardRenderer()
	require.NoError(t, err)

	tests := []struct {
		name    string
		lottery *entities.Lottery
	}{
		{
			name:    "created",
			lottery: &entities.Lottery{State: entities.LotteryStateCreated, TicketPrice: 100, MaxTicketCount: 5, Round: 1},
		},
		{
			name:    "started with slots",
			lottery: &entities.Lottery{State: entities.LotteryStateStarted, TicketPrice: 100, MaxTicketCount: 5, Round: 1, Participants: []int64{1, 2}},
		},
		{
			name:    "started with progress bar",
			lottery: &entities.Lottery{State: entities.LotteryStateStarted, TicketPrice: 5, MaxTicketCount: 500, Round: 3, Participants: []int64{1, 2, 3}},
		},
		{
			name:    "ended",
			lottery: &entities.Lottery{State: entities.LotteryStateEnded, TicketPrice: 100, MaxTicketCount: 2, Round: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := renderer.Render(tt.lottery)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, cardWidth, img.Bounds().Dx())
			assert.Equal(t, cardHeight, img.Bounds().Dy())
		})
	}
}
