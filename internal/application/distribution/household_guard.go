package distribution

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ResidentFinder lists the people registered at an address
type ResidentFinder interface {
	FindByAddress(ctx context.Context, address string) ([]registry.Beneficiary, error)
}

// RecipientDeliveries lists deliveries for a set of people
type RecipientDeliveries interface {
	ForRecipients(ctx context.Context, keys []registry.IdentityKey) ([]distribution.Delivery, error)
}

// CrossCheckError reports a failed supporting query of the household check
type CrossCheckError struct {
	Step string
	Err  error
}

func (e *CrossCheckError) Error() string {
	return fmt.Sprintf("household cross-check failed at %s: %v", e.Step, e.Err)
}

func (e *CrossCheckError) Unwrap() error {
	return e.Err
}

// HouseholdGuard warns when someone at the same address already received aid
// today. It only reads: nothing is locked or persisted, and every lookup
// evaluates it again.
type HouseholdGuard struct {
	residents  ResidentFinder
	deliveries RecipientDeliveries
	loc        *time.Location
	options
}

// NewHouseholdGuard creates a guard comparing calendar dates in loc
func NewHouseholdGuard(residents ResidentFinder, deliveries RecipientDeliveries, loc *time.Location, opts ...Option) *HouseholdGuard {
	return &HouseholdGuard{
		residents:  residents,
		deliveries: deliveries,
		loc:        loc,
		options:    buildOptions(opts),
	}
}

// Check returns the same-day alert for target's household, or nil. It never
// fails: a failed query is logged, counted and treated as "no alert".
func (g *HouseholdGuard) Check(ctx context.Context, target *registry.Beneficiary) *distribution.HouseholdAlert {
	if target == nil {
		return nil
	}

	alert, err := g.check(ctx, target)
	if err != nil {
		logger.L(ctx).Warn("Household cross-check failed, showing no alert",
			zap.String("identity_key", target.Key.String()),
			zap.String("address", target.Address),
			zap.Error(err),
		)
		g.metrics.IncCrossCheckFailure()
		return nil
	}
	if alert != nil {
		g.metrics.IncHouseholdAlert()
	}
	return alert
}

func (g *HouseholdGuard) check(ctx context.Context, target *registry.Beneficiary) (*distribution.HouseholdAlert, error) {
	residents := []registry.Beneficiary{*target}
	if strings.TrimSpace(target.Address) != "" {
		found, err := g.residents.FindByAddress(ctx, target.Address)
		if err != nil {
			return nil, &CrossCheckError{Step: "residents", Err: err}
		}
		residents = includeTarget(found, target)
	}

	keys := make([]registry.IdentityKey, len(residents))
	for i, r := range residents {
		keys[i] = r.Key
	}
	deliveries, err := g.deliveries.ForRecipients(ctx, keys)
	if err != nil {
		return nil, &CrossCheckError{Step: "deliveries", Err: err}
	}

	return distribution.DetectSameDay(target.Address, residents, deliveries, g.now(), g.loc), nil
}

func includeTarget(residents []registry.Beneficiary, target *registry.Beneficiary) []registry.Beneficiary {
	for _, r := range residents {
		if r.Key == target.Key {
			return residents
		}
	}
	return append(residents, *target)
}
