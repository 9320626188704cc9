package importapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	csvimport "github.com/fpm2805/ayuda-penco/internal/infrastructure/import"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"github.com/fpm2805/ayuda-penco/tests/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var peopleMapping = csvimport.ColumnMapping{
	FieldIdentity:      "RUT",
	FieldName:          "Nombre",
	FieldAddress:       "Direccion",
	FieldSector:        "Sector",
	FieldHouseholdSize: "Integrantes",
}

func peopleFile(lines ...string) []byte {
	return []byte(strings.Join(append([]string{"RUT;Nombre;Direccion;Sector;Integrantes"}, lines...), "\n"))
}

func TestPeopleImportService_Import(t *testing.T) {
	repo := new(testutil.MockBeneficiaryRepository)
	archive := new(testutil.MockFileArchive)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewPeopleImportService(repo, WithArchive(archive), WithMetrics(m))

	var saved []*registry.Beneficiary
	repo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = append(saved, args.Get(1).(*registry.Beneficiary))
	}).Return(nil)
	archive.On("Archive", mock.Anything, shared.ArchiveKindImport, "padron.csv", mock.Anything, "text/csv").
		Return("imports/2024/02/05/x-padron.csv", nil)

	result, err := svc.Import(context.Background(), ImportRequest{
		FileName: "padron.csv",
		Mapping:  peopleMapping,
		Data: peopleFile(
			"12.345.678-5;Ana Rojas;Los Pinos 12;Lorenzo Arenas;3.0",
			";Sin Rut;Calle 1;;2",
			"9.876.543-k;;Calle 2;;2",
			"",
			"11.111.111-1;Luis Soto;;;abc",
		),
	})
	require.NoError(t, err)

	assert.Equal(t, ModePeople, result.Mode)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, "imports/2024/02/05/x-padron.csv", result.ArchiveKey)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "RUT", result.Errors[0].Column)
	assert.Equal(t, csvimport.ErrCodeRequiredField, result.Errors[0].Code)
	assert.Equal(t, "Nombre", result.Errors[1].Column)

	require.Len(t, saved, 2)
	assert.Equal(t, registry.IdentityKey("123456785"), saved[0].Key)
	assert.Equal(t, 3, saved[0].HouseholdSize)
	assert.True(t, saved[0].Eligible)
	assert.Equal(t, "Lorenzo Arenas", saved[0].Sector)
	assert.Equal(t, 1, saved[1].HouseholdSize, "unreadable size defaults to 1")

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.ImportRows.WithLabelValues(ModePeople, metrics.OutcomeSucceeded)))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.ImportRows.WithLabelValues(ModePeople, metrics.OutcomeFailed)))
}

func TestPeopleImportService_WriteFailureContinues(t *testing.T) {
	repo := new(testutil.MockBeneficiaryRepository)
	svc := NewPeopleImportService(repo)

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *registry.Beneficiary) bool { return b.Key == "1" })).
		Return(errors.New("constraint failed"))
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Import(context.Background(), ImportRequest{
		Mapping: csvimport.ColumnMapping{FieldIdentity: "RUT", FieldName: "Nombre"},
		Data:    []byte("RUT,Nombre\n1,Ana\n2,Luis\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, csvimport.ErrCodeWriteFailed, result.Errors[0].Code)
	assert.Empty(t, result.ArchiveKey)
}

func TestPeopleImportService_MappingCheckedBeforeRows(t *testing.T) {
	repo := new(testutil.MockBeneficiaryRepository)
	svc := NewPeopleImportService(repo)

	tests := map[string]ImportRequest{
		"required field unmapped": {
			Mapping: csvimport.ColumnMapping{FieldIdentity: "RUT"},
			Data:    peopleFile("1;Ana;;;1"),
		},
		"mapped header missing": {
			Mapping: csvimport.ColumnMapping{FieldIdentity: "RUT", FieldName: "Nombre Completo"},
			Data:    peopleFile("1;Ana;;;1"),
		},
		"empty file": {
			Mapping: peopleMapping,
			Data:    []byte("   \n"),
		},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), req)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPeopleImportService_MaxRows(t *testing.T) {
	repo := new(testutil.MockBeneficiaryRepository)
	svc := NewPeopleImportService(repo, WithMaxRows(1))

	_, err := svc.Import(context.Background(), ImportRequest{
		Mapping: csvimport.ColumnMapping{FieldIdentity: "RUT", FieldName: "Nombre"},
		Data:    []byte("RUT,Nombre\n1,Ana\n2,Luis\n"),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.ErrorIs(t, err, csvimport.ErrTooManyRows)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPreview(t *testing.T) {
	preview, err := Preview(peopleFile("1;Ana;;;1", "2;Luis;;;2", "3;Eva;;;1", "4;Juan;;;4"))
	require.NoError(t, err)
	assert.Equal(t, []string{"RUT", "Nombre", "Direccion", "Sector", "Integrantes"}, preview.Headers)
	assert.Len(t, preview.Rows, csvimport.PreviewRows)
	assert.Equal(t, ";", preview.Delimiter)

	_, err = Preview([]byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
