package model

import (
	"time"

	"sprockets/internal/inventory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Part is the row form of inventory.Part. The InHouse/Outsourced source is
// flattened into Type plus exactly one of MachineID or CompanyName; the
// table's CHECK constraints enforce the same pairing.
type Part struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null"`
	Min         int             `gorm:"not null"`
	Max         int             `gorm:"not null"`
	Type        string          `gorm:"type:varchar(16);not null"`
	MachineID   *string
	CompanyName *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Part) TableName() string { return "parts" }

// NewPart flattens a domain part into a row. The id is left zero for parts
// that have not been stored yet.
func NewPart(p inventory.Part) (Part, error) {
	id, err := ParseID(p.ID)
	if err != nil {
		return Part{}, err
	}
	return Part{
		ID:          id,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Min:         p.Min,
		Max:         p.Max,
		Type:        string(p.Type()),
		MachineID:   p.MachineID(),
		CompanyName: p.CompanyName(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (r Part) Domain() inventory.Part {
	return inventory.Part{
		ID:        r.ID.String(),
		Name:      r.Name,
		Price:     r.Price,
		Levels:    inventory.Levels{Stock: r.Stock, Min: r.Min, Max: r.Max},
		Source:    inventory.SourceFrom(inventory.PartType(r.Type), r.MachineID, r.CompanyName),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ParseID maps the opaque domain id onto a row key. The empty id is the zero
// UUID; anything else must be a well-formed UUID.
func ParseID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, nil
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, inventory.ErrInvalidID
	}
	return u, nil
}
