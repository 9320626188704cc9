package distribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"github.com/fpm2805/ayuda-penco/tests/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type guardFixture struct {
	residents  *testutil.MockBeneficiaryRepository
	deliveries *testutil.MockDeliveryRepository
	metrics    *metrics.Metrics
	guard      *HouseholdGuard
	loc        *time.Location
}

// now is 2024-02-05 10:00 in Santiago (UTC-3 in summer)
func newGuardFixture(t *testing.T) *guardFixture {
	loc := testutil.Santiago(t)
	f := &guardFixture{
		residents:  new(testutil.MockBeneficiaryRepository),
		deliveries: new(testutil.MockDeliveryRepository),
		metrics:    metrics.New(prometheus.NewRegistry()),
		loc:        loc,
	}
	ledger := NewLedgerService(f.deliveries, nil)
	f.guard = NewHouseholdGuard(f.residents, ledger, loc,
		WithClock(testutil.FixedClock(time.Date(2024, 2, 5, 10, 0, 0, 0, loc))),
		WithMetrics(f.metrics),
	)
	return f
}

var (
	ana  = registry.Beneficiary{Key: "111", Name: "Ana Rojas", Address: "Los Pinos 12", HouseholdSize: 3, Eligible: true}
	luis = registry.Beneficiary{Key: "222", Name: "Luis Rojas", Address: "Los Pinos 12", HouseholdSize: 3, Eligible: true}
)

func TestHouseholdGuard_AlertsOnSameDayHouseholdDelivery(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	f.residents.On("FindByAddress", ctx, "Los Pinos 12").Return([]registry.Beneficiary{ana, luis}, nil)
	f.deliveries.On("ListByRecipients", ctx, []registry.IdentityKey{"111", "222"}).Return([]distribution.Delivery{
		{RecipientKey: "222", Item: "Agua", Quantity: 2, Center: "Liceo", Officer: "Turno 1",
			DeliveredAt: time.Date(2024, 2, 5, 9, 15, 0, 0, f.loc).UTC()},
		{RecipientKey: "222", Item: "Pañales", Quantity: 1, Center: "Liceo", Officer: "Turno 1",
			DeliveredAt: time.Date(2024, 2, 4, 23, 50, 0, 0, f.loc).UTC()},
		{RecipientKey: "111", Item: "Colchón", Quantity: 1, Center: "Gimnasio", Officer: "Turno 2",
			DeliveredAt: time.Date(2024, 2, 5, 0, 5, 0, 0, f.loc).UTC()},
	}, nil)

	alert := f.guard.Check(ctx, &ana)
	require.NotNil(t, alert)
	assert.Equal(t, "2024-02-05", alert.Date)
	assert.Equal(t, "Los Pinos 12", alert.Address)
	require.Len(t, alert.Deliveries, 2)

	assert.Equal(t, "Luis Rojas", alert.Deliveries[0].RecipientName)
	assert.Equal(t, "09:15", alert.Deliveries[0].LocalTime.Format("15:04"))
	assert.Equal(t, registry.IdentityKey("111"), alert.Deliveries[1].RecipientKey)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.HouseholdAlerts))
}

func TestHouseholdGuard_NoAlertForOtherDays(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	f.residents.On("FindByAddress", ctx, "Los Pinos 12").Return([]registry.Beneficiary{ana}, nil)
	f.deliveries.On("ListByRecipients", ctx, []registry.IdentityKey{"111"}).Return([]distribution.Delivery{
		// 02:30 UTC on the 5th is still the 4th in Santiago
		{RecipientKey: "111", Item: "Agua", Quantity: 1, DeliveredAt: time.Date(2024, 2, 5, 2, 30, 0, 0, time.UTC)},
	}, nil)

	assert.Nil(t, f.guard.Check(ctx, &ana))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(f.metrics.HouseholdAlerts))
}

func TestHouseholdGuard_BlankAddressChecksOnlyTarget(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	homeless := registry.Beneficiary{Key: "333", Name: "Sin Dirección", HouseholdSize: 1, Eligible: true}

	f.deliveries.On("ListByRecipients", ctx, []registry.IdentityKey{"333"}).Return([]distribution.Delivery{}, nil)

	assert.Nil(t, f.guard.Check(ctx, &homeless))
	f.residents.AssertNotCalled(t, "FindByAddress", mock.Anything, mock.Anything)
}

func TestHouseholdGuard_QueryFailureDegradesToNoAlert(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core))

	t.Run("residents query", func(t *testing.T) {
		f := newGuardFixture(t)
		f.residents.On("FindByAddress", ctx, "Los Pinos 12").Return(nil, errors.New("connection reset"))

		assert.Nil(t, f.guard.Check(ctx, &ana))
		assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.CrossCheckFailures))
		f.deliveries.AssertNotCalled(t, "ListByRecipients", mock.Anything, mock.Anything)
	})

	t.Run("deliveries query", func(t *testing.T) {
		f := newGuardFixture(t)
		f.residents.On("FindByAddress", ctx, "Los Pinos 12").Return([]registry.Beneficiary{ana}, nil)
		f.deliveries.On("ListByRecipients", ctx, mock.Anything).Return(nil, errors.New("timeout"))

		assert.Nil(t, f.guard.Check(ctx, &ana))
		assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.CrossCheckFailures))
	})

	assert.Equal(t, 2, logs.FilterMessage("Household cross-check failed, showing no alert").Len())
}

func TestHouseholdGuard_NilTarget(t *testing.T) {
	f := newGuardFixture(t)
	assert.Nil(t, f.guard.Check(context.Background(), nil))
}

func TestCrossCheckError(t *testing.T) {
	cause := errors.New("boom")
	err := &CrossCheckError{Step: "residents", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "residents")
}
