package distribution

import (
	"sort"
	"time"

	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
)

// SameDayDelivery is one entry of a household alert
type SameDayDelivery struct {
	RecipientKey  registry.IdentityKey
	RecipientName string
	Item          string
	Quantity      int
	Center        string
	Officer       string
	LocalTime     time.Time
}

// HouseholdAlert warns that someone at the same address already received aid
// today. It is advisory: the operator may still record a delivery.
type HouseholdAlert struct {
	Address    string
	Date       string // YYYY-MM-DD in the program zone
	Deliveries []SameDayDelivery
}

// SameCalendarDay reports whether a and b fall on the same date in loc
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DetectSameDay builds the alert for residents given their deliveries, or
// returns nil when none of them falls on now's date in loc.
func DetectSameDay(address string, residents []registry.Beneficiary, deliveries []Delivery, now time.Time, loc *time.Location) *HouseholdAlert {
	names := make(map[registry.IdentityKey]string, len(residents))
	for _, r := range residents {
		names[r.Key] = r.Name
	}

	var hits []SameDayDelivery
	for _, d := range deliveries {
		if _, ok := names[d.RecipientKey]; !ok {
			continue
		}
		if !SameCalendarDay(d.DeliveredAt, now, loc) {
			continue
		}
		hits = append(hits, SameDayDelivery{
			RecipientKey:  d.RecipientKey,
			RecipientName: names[d.RecipientKey],
			Item:          d.Item,
			Quantity:      d.Quantity,
			Center:        d.Center,
			Officer:       d.Officer,
			LocalTime:     d.LocalTime(loc),
		})
	}
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].LocalTime.After(hits[j].LocalTime)
	})
	return &HouseholdAlert{
		Address:    address,
		Date:       now.In(loc).Format(time.DateOnly),
		Deliveries: hits,
	}
}
