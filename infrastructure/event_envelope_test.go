package infrastructure

import (
	"encoding/json"
	"testing"

	"lotteryledger/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEnvelope_RoundTrip(t *testing.T) {
	t.Parallel()

	original := events.LotteryEndedEvent{
		LotteryID:      1,
		GuildID:        555,
		Round:          3,
		PayeeDiscordID: 200,
		Amount:         40,
		TicketCount:    4,
	}

	envelope, err := NewEventEnvelope(original)
	require.NoError(t, err)

	_, err = uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, SourceService, envelope.SourceService)

	data, err := json.Marshal(envelope)
	require.NoError(t, err)

	var received EventEnvelope
	require.NoError(t, json.Unmarshal(data, &received))

	decoded, err := received.DecodeEvent()
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEventEnvelope_UnknownType(t *testing.T) {
	t.Parallel()

	envelope := &EventEnvelope{EventType: "mystery", Payload: json.RawMessage(`{}`)}
	_, err := envelope.DecodeEvent()
	assert.ErrorContains(t, err, "unknown event type")
}
