package distribution

import (
	"time"

	registryapp "github.com/fpm2805/ayuda-penco/internal/application/registry"
	"github.com/fpm2805/ayuda-penco/internal/domain/distribution"
)

// RecordDeliveryRequest represents one item handed out from the entry form.
// Identity comes from the URL; NewItem marks free text typed by the operator,
// which is title-cased and added to the catalog.
type RecordDeliveryRequest struct {
	Identity string `json:"-"`
	Item     string `json:"item" binding:"required,min=1,max=100"`
	NewItem  bool   `json:"new_item"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=10"`
}

// AddCatalogItemRequest represents a new selectable item
type AddCatalogItemRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// DeliveryResponse represents a delivery in API responses
type DeliveryResponse struct {
	ID          string    `json:"id"`
	IdentityKey string    `json:"identity_key"`
	Item        string    `json:"item"`
	Quantity    int       `json:"quantity"`
	Center      string    `json:"center"`
	Officer     string    `json:"officer"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// SameDayDeliveryResponse is one line of a household alert
type SameDayDeliveryResponse struct {
	IdentityKey string    `json:"identity_key"`
	Name        string    `json:"name"`
	Item        string    `json:"item"`
	Quantity    int       `json:"quantity"`
	Center      string    `json:"center"`
	Officer     string    `json:"officer"`
	Time        string    `json:"time"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// HouseholdAlertResponse represents a same-day household alert
type HouseholdAlertResponse struct {
	Address    string                    `json:"address"`
	Date       string                    `json:"date"`
	Deliveries []SameDayDeliveryResponse `json:"deliveries"`
}

// LookupResponse is the full result of looking up an identity at the counter
type LookupResponse struct {
	IdentityKey        string                           `json:"identity_key"`
	Searched           bool                             `json:"searched"`
	Found              bool                             `json:"found"`
	Beneficiary        *registryapp.BeneficiaryResponse `json:"beneficiary,omitempty"`
	EligibilityWarning string                           `json:"eligibility_warning,omitempty"`
	HouseholdAlert     *HouseholdAlertResponse          `json:"household_alert,omitempty"`
	History            []DeliveryResponse               `json:"history"`
	Catalog            []string                         `json:"catalog"`
}

// ToDeliveryResponse converts a domain Delivery, presenting its time in loc
func ToDeliveryResponse(d *distribution.Delivery, loc *time.Location) DeliveryResponse {
	return DeliveryResponse{
		ID:          d.ID.String(),
		IdentityKey: d.RecipientKey.String(),
		Item:        d.Item,
		Quantity:    d.Quantity,
		Center:      d.Center,
		Officer:     d.Officer,
		DeliveredAt: d.LocalTime(loc),
	}
}

// ToDeliveryResponses converts a list of domain Deliveries
func ToDeliveryResponses(list []distribution.Delivery, loc *time.Location) []DeliveryResponse {
	out := make([]DeliveryResponse, len(list))
	for i := range list {
		out[i] = ToDeliveryResponse(&list[i], loc)
	}
	return out
}

// ToHouseholdAlertResponse converts an alert; nil stays nil
func ToHouseholdAlertResponse(a *distribution.HouseholdAlert) *HouseholdAlertResponse {
	if a == nil {
		return nil
	}
	resp := &HouseholdAlertResponse{
		Address:    a.Address,
		Date:       a.Date,
		Deliveries: make([]SameDayDeliveryResponse, len(a.Deliveries)),
	}
	for i, d := range a.Deliveries {
		resp.Deliveries[i] = SameDayDeliveryResponse{
			IdentityKey: d.RecipientKey.String(),
			Name:        d.RecipientName,
			Item:        d.Item,
			Quantity:    d.Quantity,
			Center:      d.Center,
			Officer:     d.Officer,
			Time:        d.LocalTime.Format("15:04"),
			DeliveredAt: d.LocalTime,
		}
	}
	return resp
}

func catalogNames(items []distribution.CatalogItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}
