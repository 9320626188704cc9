// Package report holds the read models computed over the delivery ledger.
package report

import (
	"sort"

	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
	"github.com/fpm2805/ayuda-penco/internal/domain/registry"
)

// DefaultTopRecipients is used when a ranking asks for n <= 0
const DefaultTopRecipients = 10

// CenterCount is the number of deliveries made at one center
type CenterCount struct {
	Center     string `json:"center"`
	Deliveries int    `json:"deliveries"`
}

// RecipientRanking is one line of the most-assisted ranking
type RecipientRanking struct {
	Rank        int                  `json:"rank"`
	IdentityKey registry.IdentityKey `json:"identity_key"`
	Deliveries  int                  `json:"deliveries"`
}

// ItemTotal is the number of units handed out of one item
type ItemTotal struct {
	Item       string `json:"item"`
	Units      int    `json:"units"`
	Deliveries int    `json:"deliveries"`
}

// Summary combines the three aggregations with ledger totals
type Summary struct {
	TotalDeliveries int                `json:"total_deliveries"`
	TotalUnits      int                `json:"total_units"`
	Recipients      int                `json:"recipients"`
	ByCenter        []CenterCount      `json:"by_center"`
	TopRecipients   []RecipientRanking `json:"top_recipients"`
	ItemTotals      []ItemTotal        `json:"item_totals"`
}

// ByCenter counts deliveries per center, largest first, ties by name.
// The buckets partition the ledger: their counts add up to len(deliveries).
func ByCenter(deliveries []distribution.Delivery) []CenterCount {
	counts := make(map[string]int)
	for _, d := range deliveries {
		counts[d.Center]++
	}

	out := make([]CenterCount, 0, len(counts))
	for center, n := range counts {
		out = append(out, CenterCount{Center: center, Deliveries: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Deliveries != out[j].Deliveries {
			return out[i].Deliveries > out[j].Deliveries
		}
		return out[i].Center < out[j].Center
	})
	return out
}

// TopRecipients ranks people by number of deliveries, ties by key, and
// keeps the first n. n <= 0 means DefaultTopRecipients.
func TopRecipients(deliveries []distribution.Delivery, n int) []RecipientRanking {
	if n <= 0 {
		n = DefaultTopRecipients
	}

	counts := make(map[registry.IdentityKey]int)
	for _, d := range deliveries {
		counts[d.RecipientKey]++
	}

	out := make([]RecipientRanking, 0, len(counts))
	for key, c := range counts {
		out = append(out, RecipientRanking{IdentityKey: key, Deliveries: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Deliveries != out[j].Deliveries {
			return out[i].Deliveries > out[j].Deliveries
		}
		return out[i].IdentityKey < out[j].IdentityKey
	})
	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ItemTotals sums quantities per item, largest first, ties by item name
func ItemTotals(deliveries []distribution.Delivery) []ItemTotal {
	totals := make(map[string]*ItemTotal)
	for _, d := range deliveries {
		t, ok := totals[d.Item]
		if !ok {
			t = &ItemTotal{Item: d.Item}
			totals[d.Item] = t
		}
		t.Units += d.Quantity
		t.Deliveries++
	}

	out := make([]ItemTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Item < out[j].Item
	})
	return out
}

// Summarize computes every aggregation and the overall totals
func Summarize(deliveries []distribution.Delivery, top int) *Summary {
	s := &Summary{
		TotalDeliveries: len(deliveries),
		ByCenter:        ByCenter(deliveries),
		TopRecipients:   TopRecipients(deliveries, top),
		ItemTotals:      ItemTotals(deliveries),
	}
	people := make(map[registry.IdentityKey]struct{})
	for _, d := range deliveries {
		s.TotalUnits += d.Quantity
		people[d.RecipientKey] = struct{}{}
	}
	s.Recipients = len(people)
	return s
}
