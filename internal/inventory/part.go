// Package inventory holds the parts/products domain: entity shapes, the
// validity model that accepts or rejects candidate records, and the
// integrity predicates shared by every store implementation.
//
// Nothing in this package performs I/O.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartType is the legacy discriminator carried on the wire and in storage.
type PartType string

const (
	InHouseType    PartType = "InHouse"
	OutsourcedType PartType = "Outsourced"
)

// Source says where a part comes from. It is either InHouse or Outsourced;
// the unexported method closes the set.
type Source interface {
	Type() PartType
	isSource()
}

// InHouse parts are manufactured on one of our machines.
type InHouse struct {
	MachineID string
}

func (InHouse) Type() PartType { return InHouseType }
func (InHouse) isSource()      {}

// Outsourced parts are bought from a supplier.
type Outsourced struct {
	CompanyName string
}

func (Outsourced) Type() PartType { return OutsourcedType }
func (Outsourced) isSource()      {}

// Levels are the stock bounds shared by parts and products.
type Levels struct {
	Stock int
	Min   int
	Max   int
}

// Part is a validated inventory part. Values of this type are only produced
// by ValidatePart or read back from a store.
type Part struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Levels
	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Type returns the discriminator of the part's source.
func (p Part) Type() PartType {
	if p.Source == nil {
		return ""
	}
	return p.Source.Type()
}

// MachineID is non-nil only for InHouse parts.
func (p Part) MachineID() *string {
	if s, ok := p.Source.(InHouse); ok {
		return &s.MachineID
	}
	return nil
}

// CompanyName is non-nil only for Outsourced parts.
func (p Part) CompanyName() *string {
	if s, ok := p.Source.(Outsourced); ok {
		return &s.CompanyName
	}
	return nil
}

// SourceFrom rebuilds the sum type from the flat legacy columns. Unknown
// types yield nil.
func SourceFrom(t PartType, machineID, companyName *string) Source {
	switch t {
	case InHouseType:
		return InHouse{MachineID: deref(machineID)}
	case OutsourcedType:
		return Outsourced{CompanyName: deref(companyName)}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
