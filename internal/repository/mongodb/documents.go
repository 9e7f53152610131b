// Package mongodb stores parts, products and users as MongoDB documents. It is
// the document-store alternative to the Postgres repositories and satisfies
// the same repository interfaces.
package mongodb

import (
	"time"

	"sprockets/internal/inventory"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meta holds the id and timestamps every inventory document carries.
type Meta struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type partDoc struct {
	Meta        `bson:",inline"`
	Name        string               `bson:"name"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Min         int                  `bson:"min"`
	Max         int                  `bson:"max"`
	Type        string               `bson:"type"`
	MachineID   *string              `bson:"machineId"`
	CompanyName *string              `bson:"companyName"`
}

type assocDoc struct {
	PartID string `bson:"partId"`
	Name   string `bson:"name"`
}

type productDoc struct {
	Meta            `bson:",inline"`
	Name            string               `bson:"name"`
	Price           primitive.Decimal128 `bson:"price"`
	Stock           int                  `bson:"stock"`
	Min             int                  `bson:"min"`
	Max             int                  `bson:"max"`
	AssociatedParts []assocDoc           `bson:"associatedParts"`
}

type userDoc struct {
	ID           string    `bson:"_id"`
	FirstName    string    `bson:"firstName"`
	LastName     string    `bson:"lastName"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newPartDoc(p inventory.Part) (partDoc, error) {
	m, err := newMeta(p.ID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return partDoc{}, err
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return partDoc{}, err
	}
	return partDoc{
		Meta:        m,
		Name:        p.Name,
		Price:       price,
		Stock:       p.Stock,
		Min:         p.Min,
		Max:         p.Max,
		Type:        string(p.Type()),
		MachineID:   p.MachineID(),
		CompanyName: p.CompanyName(),
	}, nil
}

func (d partDoc) domain() inventory.Part {
	return inventory.Part{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     fromDecimal128(d.Price),
		Levels:    inventory.Levels{Stock: d.Stock, Min: d.Min, Max: d.Max},
		Source:    inventory.SourceFrom(inventory.PartType(d.Type), d.MachineID, d.CompanyName),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func newProductDoc(p inventory.Product) (productDoc, error) {
	m, err := newMeta(p.ID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return productDoc{}, err
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	refs := make([]assocDoc, len(p.AssociatedParts))
	for i, ap := range p.AssociatedParts {
		refs[i] = assocDoc{PartID: ap.PartID, Name: ap.Name}
	}
	return productDoc{
		Meta:            m,
		Name:            p.Name,
		Price:           price,
		Stock:           p.Stock,
		Min:             p.Min,
		Max:             p.Max,
		AssociatedParts: refs,
	}, nil
}

func (d productDoc) domain() inventory.Product {
	refs := make([]inventory.AssociatedPart, len(d.AssociatedParts))
	for i, ap := range d.AssociatedParts {
		refs[i] = inventory.AssociatedPart{PartID: ap.PartID, Name: ap.Name}
	}
	return inventory.Product{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Price:           fromDecimal128(d.Price),
		Levels:          inventory.Levels{Stock: d.Stock, Min: d.Min, Max: d.Max},
		AssociatedParts: refs,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func newMeta(id string, created, updated time.Time) (Meta, error) {
	m := Meta{CreatedAt: created, UpdatedAt: updated}
	if id == "" {
		return m, nil
	}
	oid, err := parseObjectID(id)
	if err != nil {
		return Meta{}, err
	}
	m.ID = oid
	return m, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, inventory.ErrInvalidID
	}
	return oid, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
