package repository

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"lotteryledger/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticRow yields fixed column values, or err, to Scan
type staticRow struct {
	values []any
	err    error
}

func (r staticRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func lotteryRow(state entities.LotteryState) staticRow {
	now := time.Now()
	return staticRow{values: []any{
		int64(1),      // id
		testGuildID,   // guild_id
		int64(100),    // owner
		state,         // state
		int64(10),     // ticket_price
		int64(3),      // max_ticket_count
		int64(2),      // round
		(*int64)(nil), // message_id
		(*int64)(nil), // channel_id
		now,           // created_at
		now,           // updated_at
	}}
}

func TestScanLottery(t *testing.T) {
	t.Parallel()

	t.Run("known state", func(t *testing.T) {
		lottery, err := scanLottery(lotteryRow(entities.LotteryStateStarted))
		require.NoError(t, err)
		require.NotNil(t, lottery)
		assert.Equal(t, entities.LotteryStateStarted, lottery.State)
		assert.Equal(t, int64(2), lottery.Round)
		assert.NotNil(t, lottery.Participants)
	})

	t.Run("unknown state is rejected", func(t *testing.T) {
		lottery, err := scanLottery(lotteryRow(entities.LotteryState("drawing")))
		require.Error(t, err)
		assert.Nil(t, lottery)
		assert.Contains(t, err.Error(), "unknown state")
	})

	t.Run("no row", func(t *testing.T) {
		lottery, err := scanLottery(staticRow{err: pgx.ErrNoRows})
		require.NoError(t, err)
		assert.Nil(t, lottery)
	})
}
