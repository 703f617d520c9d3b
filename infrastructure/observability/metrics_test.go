package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lotteryledger/config"
	"lotteryledger/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRejection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{entities.ErrNotOwner, RejectionNotOwner},
		{entities.ErrAlreadyStartedOrEnded, RejectionInvalidTransition},
		{entities.ErrNotStartedOrEnded, RejectionInvalidTransition},
		{entities.ErrNotEnded, RejectionInvalidTransition},
		{entities.ErrInvalidPayment, RejectionInvalidPayment},
		{entities.ErrInvalidLotteryConfig, RejectionInvalidConfig},
		{fmt.Errorf("wrapped: %w", entities.ErrInsufficientBalance), RejectionInsufficientFunds},
		{errors.New("boom"), RejectionOther},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRejection(tt.err))
		})
	}
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordTicketBought()
		mp.RecordRoundEnded(10)
		mp.RecordOperationRejected(RejectionNotOwner)
		mp.MeasureDatabaseQuery("lottery", "BuyTicket")()
	})
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_NilIsNoop(t *testing.T) {
	t.Parallel()

	var mp *MetricsProvider
	assert.NotPanics(t, func() {
		mp.RecordTicketBought()
		mp.RecordNATSMessagePublished("lottery_ended")
	})
}

func TestMetricsProvider_ExporterNoneIsNoop(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "none"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.NotPanics(t, func() { mp.RecordRoundEnded(5) })
}

func TestNewServiceResource_MergesWithSDKDefault(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelServiceName = "lotteryledger-resource"

	res, err := newServiceResource(cfg)
	require.NoError(t, err)

	value, ok := res.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "lotteryledger-resource", value.AsString())

	env, ok := res.Set().Value("environment")
	require.True(t, ok)
	assert.Equal(t, "test", env.AsString())
}

func TestMetricsProvider_ConsoleExporterRecords(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "console"
	cfg.OTelExportIntervalMillis = 60000

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.True(t, mp.isEnabled())

	assert.NotPanics(t, func() {
		mp.RecordTicketBought()
		mp.RecordRoundEnded(30)
	})
	assert.NoError(t, mp.Shutdown(context.Background()))
}
