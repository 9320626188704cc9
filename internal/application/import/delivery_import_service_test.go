package importapp

import (
	"context"
	"errors"
	"testing"
	"time"

	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/fpm2805/ayuda-penco/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	importCenter  = "Carga Histórica Municipal"
	importOfficer = "Admin (Carga Masiva)"
)

type deliveryImportFixture struct {
	repo  *testutil.MockDeliveryRepository
	saved []*distribution.Delivery
	svc   *DeliveryImportService
	loc   *time.Location
	now   time.Time
}

func newDeliveryImportFixture(t *testing.T) *deliveryImportFixture {
	loc := testutil.Santiago(t)
	f := &deliveryImportFixture{
		repo: new(testutil.MockDeliveryRepository),
		loc:  loc,
		now:  time.Date(2024, 2, 5, 16, 45, 0, 0, loc),
	}
	ledger := distributionapp.NewLedgerService(f.repo, nil)
	f.svc = NewDeliveryImportService(ledger, loc, importCenter, importOfficer, WithClock(testutil.FixedClock(f.now)))
	return f
}

func (f *deliveryImportFixture) acceptAll() {
	f.repo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		f.saved = append(f.saved, args.Get(1).(*distribution.Delivery))
	}).Return(nil)
}

func TestDeliveryImportService_DateAndCenterColumns(t *testing.T) {
	f := newDeliveryImportFixture(t)
	f.acceptAll()

	result, err := f.svc.Import(context.Background(), DeliveryImportRequest{
		ImportRequest: ImportRequest{
			Mapping: csvimport.ColumnMapping{
				FieldIdentity: "rut", FieldItem: "item", FieldQuantity: "cantidad",
				FieldDate: "fecha", FieldCenter: "centro",
			},
			Data: []byte("rut,item,cantidad,fecha,centro\n" +
				"12.345.678-5,Agua,2,2023-08-01 10:30:00,Gimnasio Municipal\n" +
				"1-9,Colchón,1.0,no es fecha,\n"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, f.saved, 2)

	first := f.saved[0]
	assert.Equal(t, registry.IdentityKey("123456785"), first.RecipientKey)
	assert.Equal(t, time.Date(2023, 8, 1, 10, 30, 0, 0, f.loc).UTC(), first.DeliveredAt)
	assert.Equal(t, "Gimnasio Municipal", first.Center)
	assert.Equal(t, importOfficer, first.Officer)

	second := f.saved[1]
	assert.Equal(t, 1, second.Quantity)
	assert.True(t, second.DeliveredAt.Equal(f.now), "unreadable date falls back to now")
	assert.Equal(t, importCenter, second.Center, "blank center cell takes the fixed center")
}

func TestDeliveryImportService_FixedDateAndCenter(t *testing.T) {
	f := newDeliveryImportFixture(t)
	f.acceptAll()

	result, err := f.svc.Import(context.Background(), DeliveryImportRequest{
		ImportRequest: ImportRequest{
			Mapping: csvimport.ColumnMapping{FieldIdentity: "RUT", FieldItem: "Item", FieldQuantity: "Cant"},
			Data:    []byte("RUT;Item;Cant\n1;Agua;3\n2;Pañales;1\n"),
		},
		FixedDate:   "2023-07-30",
		FixedCenter: "Sede Vecinal",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)

	midnight := time.Date(2023, 7, 30, 0, 0, 0, 0, f.loc).UTC()
	for _, d := range f.saved {
		assert.Equal(t, midnight, d.DeliveredAt)
		assert.Equal(t, "Sede Vecinal", d.Center)
	}
}

func TestDeliveryImportService_DefaultsToTodayAtMidnight(t *testing.T) {
	f := newDeliveryImportFixture(t)
	f.acceptAll()

	_, err := f.svc.Import(context.Background(), DeliveryImportRequest{
		ImportRequest: ImportRequest{
			Mapping: csvimport.ColumnMapping{FieldIdentity: "RUT", FieldItem: "Item", FieldQuantity: "Cant"},
			Data:    []byte("RUT,Item,Cant\n1,Agua,1\n"),
		},
	})
	require.NoError(t, err)
	require.Len(t, f.saved, 1)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, f.loc).UTC(), f.saved[0].DeliveredAt)
	assert.Equal(t, importCenter, f.saved[0].Center)
}

func TestDeliveryImportService_RowOutcomes(t *testing.T) {
	f := newDeliveryImportFixture(t)
	f.repo.On("Append", mock.Anything, mock.MatchedBy(func(d *distribution.Delivery) bool { return d.RecipientKey == "404" })).
		Return(distribution.NewRecipientNotFoundError("404", errors.New("fk violation")))
	f.repo.On("Append", mock.Anything, mock.MatchedBy(func(d *distribution.Delivery) bool { return d.RecipientKey == "500" })).
		Return(errors.New("disk full"))
	f.repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Import(context.Background(), DeliveryImportRequest{
		ImportRequest: ImportRequest{
			Mapping: csvimport.ColumnMapping{FieldIdentity: "rut", FieldItem: "item", FieldQuantity: "cantidad"},
			Data: []byte("rut,item,cantidad\n" +
				"1,Agua,2\n" +
				"404,Agua,1\n" +
				"500,Agua,1\n" +
				"2,Agua,cero\n" +
				"3,,1\n" +
				"4,Agua,0\n" +
				",Agua,1\n"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.MissingRecipient)
	assert.Equal(t, 5, result.Failed)
	assert.Equal(t, result.Total, result.Succeeded+result.MissingRecipient+result.Failed)

	codes := make(map[int]string, len(result.Errors))
	for _, e := range result.Errors {
		codes[e.Row] = e.Code
	}
	assert.Equal(t, map[int]string{
		3: csvimport.ErrCodeMissingRecipient,
		4: csvimport.ErrCodeWriteFailed,
		5: csvimport.ErrCodeParse,
		6: csvimport.ErrCodeParse,
		7: csvimport.ErrCodeParse,
		8: csvimport.ErrCodeRequiredField,
	}, codes)
}

func TestDeliveryImportService_Rejections(t *testing.T) {
	f := newDeliveryImportFixture(t)

	_, err := f.svc.Import(context.Background(), DeliveryImportRequest{
		ImportRequest: ImportRequest{
			Mapping: csvimport.ColumnMapping{FieldIdentity: "rut", FieldItem: "item"},
			Data:    []byte("rut,item,cantidad\n1,Agua,1\n"),
		},
	})
	assert.ErrorIs(t, err, shared.ErrValidation, "quantity must be mapped")

	_, err = f.svc.Import(context.Background(), DeliveryImportRequest{
		ImportRequest: ImportRequest{
			Mapping: csvimport.ColumnMapping{FieldIdentity: "rut", FieldItem: "item", FieldQuantity: "cantidad"},
			Data:    []byte("rut,item,cantidad\n1,Agua,1\n"),
		},
		FixedDate: "30/07/2023",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	f.repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}
