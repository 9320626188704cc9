package distribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var counterTime = time.Date(2024, 2, 5, 14, 30, 0, 0, time.UTC)

var liceo = distribution.Session{Center: "Liceo Pencopolitano", Officer: "Funcionario Turno 1"}

func newTestLedger(deliveries *testutil.MockDeliveryRepository, catalog *testutil.MockCatalogRepository) *LedgerService {
	return NewLedgerService(deliveries, catalog, WithClock(testutil.FixedClock(counterTime)))
}

func TestLedgerService_RecordDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog item stamped by the server clock", func(t *testing.T) {
		deliveries := new(testutil.MockDeliveryRepository)
		catalog := new(testutil.MockCatalogRepository)
		deliveries.On("Append", mock.Anything, mock.MatchedBy(func(d *distribution.Delivery) bool {
			return d.RecipientKey == "123456785" &&
				d.Item == "Agua" &&
				d.Quantity == 2 &&
				d.Center == liceo.Center &&
				d.Officer == liceo.Officer &&
				d.DeliveredAt.Equal(counterTime)
		})).Return(nil)

		d, err := newTestLedger(deliveries, catalog).RecordDelivery(ctx, liceo, RecordDeliveryRequest{
			Identity: "12.345.678-5", Item: "Agua", Quantity: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, time.UTC, d.DeliveredAt.Location())
		deliveries.AssertExpectations(t)
		catalog.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("new item is title-cased and added to the catalog", func(t *testing.T) {
		deliveries := new(testutil.MockDeliveryRepository)
		catalog := new(testutil.MockCatalogRepository)
		deliveries.On("Append", mock.Anything, mock.Anything).Return(nil)
		catalog.On("Add", mock.Anything, distribution.CatalogItem{Name: "Kit De Higiene"}).Return(nil)

		d, err := newTestLedger(deliveries, catalog).RecordDelivery(ctx, liceo, RecordDeliveryRequest{
			Identity: "1-9", Item: "  kit de HIGIENE ", NewItem: true, Quantity: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, "Kit De Higiene", d.Item)
		catalog.AssertExpectations(t)
	})

	t.Run("catalog failure is logged, delivery stands", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		logCtx := logger.WithContext(ctx, zap.New(core))

		deliveries := new(testutil.MockDeliveryRepository)
		catalog := new(testutil.MockCatalogRepository)
		deliveries.On("Append", mock.Anything, mock.Anything).Return(nil)
		catalog.On("Add", mock.Anything, mock.Anything).Return(errors.New("catalog table locked"))

		d, err := newTestLedger(deliveries, catalog).RecordDelivery(logCtx, liceo, RecordDeliveryRequest{
			Identity: "1-9", Item: "colchón", NewItem: true, Quantity: 1,
		})
		require.NoError(t, err)
		assert.NotNil(t, d)
		assert.Equal(t, 1, logs.FilterMessage("Failed to add new item to catalog").Len())
	})

	t.Run("missing recipient is a foreign key error", func(t *testing.T) {
		deliveries := new(testutil.MockDeliveryRepository)
		catalog := new(testutil.MockCatalogRepository)
		deliveries.On("Append", mock.Anything, mock.Anything).
			Return(distribution.NewRecipientNotFoundError("999", nil))

		_, err := newTestLedger(deliveries, catalog).RecordDelivery(ctx, liceo, RecordDeliveryRequest{
			Identity: "999", Item: "Agua", Quantity: 1,
		})
		assert.ErrorIs(t, err, distribution.ErrRecipientNotFound)
		catalog.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	invalid := map[string]struct {
		session distribution.Session
		req     RecordDeliveryRequest
	}{
		"blank item":     {liceo, RecordDeliveryRequest{Identity: "1", Item: " ", Quantity: 1}},
		"zero quantity":  {liceo, RecordDeliveryRequest{Identity: "1", Item: "Agua", Quantity: 0}},
		"blank center":   {distribution.Session{Officer: "x"}, RecordDeliveryRequest{Identity: "1", Item: "Agua", Quantity: 1}},
		"blank officer":  {distribution.Session{Center: "x"}, RecordDeliveryRequest{Identity: "1", Item: "Agua", Quantity: 1}},
		"blank identity": {liceo, RecordDeliveryRequest{Identity: "..", Item: "Agua", Quantity: 1}},
	}
	for name, tc := range invalid {
		t.Run(name, func(t *testing.T) {
			deliveries := new(testutil.MockDeliveryRepository)
			_, err := newTestLedger(deliveries, new(testutil.MockCatalogRepository)).RecordDelivery(ctx, tc.session, tc.req)
			assert.ErrorIs(t, err, shared.ErrValidation)
			deliveries.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

func TestLedgerService_Queries(t *testing.T) {
	ctx := context.Background()
	deliveries := new(testutil.MockDeliveryRepository)
	svc := newTestLedger(deliveries, new(testutil.MockCatalogRepository))

	history := []distribution.Delivery{{RecipientKey: "123456785", Item: "Agua", Quantity: 1}}
	deliveries.On("HistoryFor", ctx, registry.IdentityKey("123456785")).Return(history, nil)
	deliveries.On("ListAll", ctx, distribution.LedgerFilter{}).Return(history, nil)
	deliveries.On("ListByRecipients", ctx, []registry.IdentityKey{"123456785"}).Return(history, nil)

	got, err := svc.HistoryFor(ctx, "12.345.678-5")
	require.NoError(t, err)
	assert.Equal(t, history, got)

	got, err = svc.HistoryFor(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.AllDeliveries(ctx, distribution.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ForRecipients(ctx, []registry.IdentityKey{"123456785"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ForRecipients(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLedgerService_RecordImported(t *testing.T) {
	ctx := context.Background()
	deliveries := new(testutil.MockDeliveryRepository)
	d := &distribution.Delivery{RecipientKey: "1", Item: "Agua", Quantity: 1, DeliveredAt: time.Date(2023, 8, 1, 4, 0, 0, 0, time.UTC)}
	deliveries.On("Append", ctx, d).Return(nil)

	require.NoError(t, newTestLedger(deliveries, nil).RecordImported(ctx, d))
	assert.Equal(t, 2023, d.DeliveredAt.Year(), "imported deliveries keep their timestamp")
}
