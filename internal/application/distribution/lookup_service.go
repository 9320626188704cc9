package distribution

import (
	"context"
	"time"

	registryapp "github.com/fpm2805/ayuda-penco/internal/application/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LookupService runs the counter workflow: normalize the typed identity,
// find the person, check the household and load history and catalog.
type LookupService struct {
	directory *registryapp.DirectoryService
	guard     *HouseholdGuard
	ledger    *LedgerService
	catalog   *CatalogService
	loc       *time.Location
}

// NewLookupService creates a new LookupService
func NewLookupService(directory *registryapp.DirectoryService, guard *HouseholdGuard, ledger *LedgerService, catalog *CatalogService, loc *time.Location) *LookupService {
	return &LookupService{
		directory: directory,
		guard:     guard,
		ledger:    ledger,
		catalog:   catalog,
		loc:       loc,
	}
}

// Lookup returns everything the operator needs for raw. A blank input is
// "not searched"; an unknown person is "searched, not found" so the UI can
// offer registration.
func (s *LookupService) Lookup(ctx context.Context, raw string) (*LookupResponse, error) {
	key := registry.NormalizeIdentity(raw)
	resp := &LookupResponse{
		IdentityKey: key.String(),
		History:     []DeliveryResponse{},
		Catalog:     []string{},
	}
	if key.IsEmpty() {
		return resp, nil
	}
	resp.Searched = true

	ctx, span := telemetry.StartServiceSpan(ctx, "lookup", "identity", telemetry.SpanAttrIdentityKey, key.String())
	defer span.End()

	b, err := s.directory.FindByKey(ctx, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if b == nil {
		return resp, nil
	}

	resp.Found = true
	beneficiary := registryapp.ToBeneficiaryResponse(b, s.loc)
	resp.Beneficiary = &beneficiary
	resp.EligibilityWarning = b.Warning()
	resp.HouseholdAlert = ToHouseholdAlertResponse(s.guard.Check(ctx, b))

	history, err := s.ledger.HistoryFor(ctx, key.String())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp.History = ToDeliveryResponses(history, s.loc)

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		logger.L(ctx).Warn("Failed to load catalog for lookup", zap.Error(err))
	} else {
		resp.Catalog = catalog
	}
	return resp, nil
}
