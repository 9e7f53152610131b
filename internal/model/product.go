package model

import (
	"time"

	"sprockets/internal/inventory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AssociatedPart is one element of products.associated_parts. The JSON keys
// are queried directly by the cascade SQL.
type AssociatedPart struct {
	PartID string `json:"partId"`
	Name   string `json:"name"`
}

// Product is the row form of inventory.Product. Associations live in a jsonb
// array on the product row; there is no join table.
type Product struct {
	ID              uuid.UUID                           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string                              `gorm:"not null"`
	Price           decimal.Decimal                     `gorm:"type:decimal(12,2);not null"`
	Stock           int                                 `gorm:"not null"`
	Min             int                                 `gorm:"not null"`
	Max             int                                 `gorm:"not null"`
	AssociatedParts datatypes.JSONSlice[AssociatedPart] `gorm:"type:jsonb;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Product) TableName() string { return "products" }

func NewProduct(p inventory.Product) (Product, error) {
	id, err := ParseID(p.ID)
	if err != nil {
		return Product{}, err
	}
	refs := make(datatypes.JSONSlice[AssociatedPart], len(p.AssociatedParts))
	for i, ap := range p.AssociatedParts {
		refs[i] = AssociatedPart{PartID: ap.PartID, Name: ap.Name}
	}
	return Product{
		ID:              id,
		Name:            p.Name,
		Price:           p.Price,
		Stock:           p.Stock,
		Min:             p.Min,
		Max:             p.Max,
		AssociatedParts: refs,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func (r Product) Domain() inventory.Product {
	refs := make([]inventory.AssociatedPart, len(r.AssociatedParts))
	for i, ap := range r.AssociatedParts {
		refs[i] = inventory.AssociatedPart{PartID: ap.PartID, Name: ap.Name}
	}
	return inventory.Product{
		ID:              r.ID.String(),
		Name:            r.Name,
		Price:           r.Price,
		Levels:          inventory.Levels{Stock: r.Stock, Min: r.Min, Max: r.Max},
		AssociatedParts: refs,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
