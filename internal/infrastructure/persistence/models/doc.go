// Package models contains GORM persistence models. They are kept apart from
// the domain types so the domain packages stay free of ORM tags; each model
// converts to and from its domain type.
//
//   - registry.go: beneficiaries
//   - distribution.go: deliveries and the item catalog
package models

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&BeneficiaryModel{},
		&DeliveryModel{},
		&CatalogItemModel{},
	}
}
