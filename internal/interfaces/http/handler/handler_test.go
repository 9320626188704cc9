package handler

import (
	"bytes"
	"mime/multipart"
	"testing"
	"time"

	distributionapp "github.com/fpm2805/ayuda-penco/internal/application/distribution"
	importapp "github.com/fpm2805/ayuda-penco/internal/application/import"
	registryapp "github.com/fpm2805/ayuda-penco/internal/application/registry"
	reportapp "github.com/fpm2805/ayuda-penco/internal/application/report"
	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/interfaces/http/middleware"
	"github.com/fpm2805/ayuda-penco/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var fallbackSession = distribution.Session{Center: "Liceo Pencopolitano", Officer: "Funcionario Turno 1"}

// apiFixture wires the real services over mocked repositories
type apiFixture struct {
	people     *testutil.MockBeneficiaryRepository
	deliveries *testutil.MockDeliveryRepository
	catalog    *testutil.MockCatalogRepository
	archive    *testutil.MockFileArchive
	engine     *gin.Engine
	loc        *time.Location
	now        time.Time
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	loc := testutil.Santiago(t)
	f := &apiFixture{
		people:     new(testutil.MockBeneficiaryRepository),
		deliveries: new(testutil.MockDeliveryRepository),
		catalog:    new(testutil.MockCatalogRepository),
		archive:    new(testutil.MockFileArchive),
		loc:        loc,
		now:        time.Date(2024, 2, 5, 11, 30, 0, 0, loc),
	}

	clock := testutil.FixedClock(f.now)
	directory := registryapp.NewDirectoryService(f.people, registryapp.WithClock(clock))
	ledger := distributionapp.NewLedgerService(f.deliveries, f.catalog, distributionapp.WithClock(clock))
	guard := distributionapp.NewHouseholdGuard(directory, ledger, loc, distributionapp.WithClock(clock))
	catalog := distributionapp.NewCatalogService(f.catalog)
	lookup := distributionapp.NewLookupService(directory, guard, ledger, catalog, loc)
	reports := reportapp.NewReportService(ledger, loc, 10, f.archive)
	peopleImport := importapp.NewPeopleImportService(directory, importapp.WithClock(clock))
	deliveryImport := importapp.NewDeliveryImportService(ledger, loc, fallbackSession.Center, "Carga masiva", importapp.WithClock(clock))

	lookupHandler := NewLookupHandler(lookup)
	beneficiaries := NewBeneficiaryHandler(directory, ledger, guard, loc)
	catalogHandler := NewCatalogHandler(catalog)
	imports := NewImportHandler(peopleImport, deliveryImport, 1024)
	reportHandler := NewReportHandler(reports)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Session(fallbackSession))
	r.GET("/lookup", lookupHandler.Lookup)
	r.GET("/beneficiaries", beneficiaries.List)
	r.POST("/beneficiaries", beneficiaries.Register)
	r.GET("/beneficiaries/:key", beneficiaries.Get)
	r.GET("/beneficiaries/:key/deliveries", beneficiaries.History)
	r.POST("/beneficiaries/:key/deliveries", beneficiaries.RecordDelivery)
	r.GET("/beneficiaries/:key/household-alert", beneficiaries.HouseholdAlert)
	r.GET("/catalog", catalogHandler.List)
	r.POST("/catalog", catalogHandler.Add)
	r.POST("/imports/preview", imports.Preview)
	r.POST("/imports/people", imports.ImportPeople)
	r.POST("/imports/deliveries", imports.ImportDeliveries)
	r.GET("/reports/summary", reportHandler.Summary)
	r.GET("/reports/centers", reportHandler.Centers)
	r.GET("/reports/recipients", reportHandler.Recipients)
	r.GET("/reports/items", reportHandler.Items)
	r.GET("/reports/export", reportHandler.Export)
	f.engine = r
	return f
}

func (f *apiFixture) beneficiary(t *testing.T, key, name, address string) *registry.Beneficiary {
	t.Helper()
	b, err := registry.NewBeneficiary(registry.IdentityKey(key), name, address, "Centro", 3, f.now.Add(-48*time.Hour).UTC())
	require.NoError(t, err)
	return b
}

func (f *apiFixture) delivery(t *testing.T, key, item string, qty int, at time.Time) distribution.Delivery {
	t.Helper()
	d, err := distribution.NewDelivery(registry.IdentityKey(key), item, qty, fallbackSession, at.UTC())
	require.NoError(t, err)
	return *d
}

// multipartBody builds an upload with a "file" part and plain fields
func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
