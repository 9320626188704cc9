// Package distribution implements the delivery ledger, the household
// duplicate guard and the counter lookup workflow.
package distribution

import (
	"context"
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/metrics"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Sources for the deliveries_recorded metric
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// Option configures the services of this package
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics records counters in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LedgerService records and queries deliveries
type LedgerService struct {
	deliveries distribution.DeliveryRepository
	catalog    distribution.CatalogRepository
	options
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(deliveries distribution.DeliveryRepository, catalog distribution.CatalogRepository, opts ...Option) *LedgerService {
	return &LedgerService{
		deliveries: deliveries,
		catalog:    catalog,
		options:    buildOptions(opts),
	}
}

// RecordDelivery appends a delivery typed at the counter. The server clock
// stamps it and the session names the center and officer. A new free-text
// item is title-cased and added to the catalog; failing to add it is logged
// and does not undo the delivery.
func (s *LedgerService) RecordDelivery(ctx context.Context, session distribution.Session, req RecordDeliveryRequest) (*distribution.Delivery, error) {
	key := registry.NormalizeIdentity(req.Identity)
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "record_delivery",
		telemetry.SpanAttrIdentityKey, key.String(),
		telemetry.SpanAttrCenter, session.Center,
		telemetry.SpanAttrQuantity, req.Quantity,
	)
	defer span.End()

	item := strings.TrimSpace(req.Item)
	if req.NewItem {
		item = distribution.NormalizeItemName(item)
	}

	d, err := distribution.NewDelivery(key, item, req.Quantity, session, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.deliveries.Append(ctx, d); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.IncDeliveryRecorded(SourceManual)

	if req.NewItem {
		if err := s.catalog.Add(ctx, distribution.CatalogItem{Name: item}); err != nil {
			logger.L(ctx).Warn("Failed to add new item to catalog",
				zap.String("item", item),
				zap.Error(err),
			)
		}
	}

	logger.L(ctx).Info("Delivery recorded",
		zap.String("identity_key", key.String()),
		zap.String("item", d.Item),
		zap.Int("quantity", d.Quantity),
	)
	return d, nil
}

// RecordImported appends a delivery built by the bulk importer, keeping its
// own timestamp.
func (s *LedgerService) RecordImported(ctx context.Context, d *distribution.Delivery) error {
	if err := s.deliveries.Append(ctx, d); err != nil {
		return err
	}
	s.metrics.IncDeliveryRecorded(SourceImport)
	return nil
}

// HistoryFor returns the deliveries of raw's person, most recent first.
// An empty key yields an empty history.
func (s *LedgerService) HistoryFor(ctx context.Context, raw string) ([]distribution.Delivery, error) {
	key := registry.NormalizeIdentity(raw)
	if key.IsEmpty() {
		return []distribution.Delivery{}, nil
	}
	return s.deliveries.HistoryFor(ctx, key)
}

// AllDeliveries returns the ledger within filter, oldest first
func (s *LedgerService) AllDeliveries(ctx context.Context, filter distribution.LedgerFilter) ([]distribution.Delivery, error) {
	return s.deliveries.ListAll(ctx, filter)
}

// ForRecipients returns every delivery of the given people
func (s *LedgerService) ForRecipients(ctx context.Context, keys []registry.IdentityKey) ([]distribution.Delivery, error) {
	if len(keys) == 0 {
		return []distribution.Delivery{}, nil
	}
	return s.deliveries.ListByRecipients(ctx, keys)
}
