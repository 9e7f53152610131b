package dto

import (
	"time"

	"sprockets/internal/inventory"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PartRequest is decoded with every field optional; the inventory validity
// rules decide what is missing.
type PartRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Min         *int             `json:"min"`
	Max         *int             `json:"max"`
	Type        *string          `json:"type"`
	MachineID   *string          `json:"machineId"`
	CompanyName *string          `json:"companyName"`
}

func (r PartRequest) Input() inventory.PartInput {
	return inventory.PartInput{
		Name:        r.Name,
		Price:       r.Price,
		Stock:       r.Stock,
		Min:         r.Min,
		Max:         r.Max,
		Type:        r.Type,
		MachineID:   r.MachineID,
		CompanyName: r.CompanyName,
	}
}

type AssociatedPartRequest struct {
	PartID *string `json:"partId"`
	Name   *string `json:"name"`
}

type ProductRequest struct {
	Name            *string                 `json:"name"`
	Price           *decimal.Decimal        `json:"price"`
	Stock           *int                    `json:"stock"`
	Min             *int                    `json:"min"`
	Max             *int                    `json:"max"`
	AssociatedParts []AssociatedPartRequest `json:"associatedParts"`
}

func (r ProductRequest) Input() inventory.ProductInput {
	refs := make([]inventory.AssociatedPartInput, len(r.AssociatedParts))
	for i, ap := range r.AssociatedParts {
		refs[i] = inventory.AssociatedPartInput{PartID: ap.PartID, Name: ap.Name}
	}
	return inventory.ProductInput{
		Name:            r.Name,
		Price:           r.Price,
		Stock:           r.Stock,
		Min:             r.Min,
		Max:             r.Max,
		AssociatedParts: refs,
	}
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PartResponse is the flat wire form of a part. Exactly one of MachineID and
// CompanyName is non-null, matching Type.
type PartResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Min         int             `json:"min"`
	Max         int             `json:"max"`
	Type        string          `json:"type"`
	MachineID   *string         `json:"machineId"`
	CompanyName *string         `json:"companyName"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func NewPartResponse(p inventory.Part) PartResponse {
	return PartResponse{
		ID:          p.ID,
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
	}
}

func NewPartResponses(parts []inventory.Part) []PartResponse {
	out := make([]PartResponse, len(parts))
	for i, p := range parts {
		out[i] = NewPartResponse(p)
	}
	return out
}

// AssociatedPartResponse carries the stored reference plus the referenced
// part as it is now; Part is null once that part has been deleted.
type AssociatedPartResponse struct {
	PartID string        `json:"partId"`
	Name   string        `json:"name"`
	Part   *PartResponse `json:"part"`
}

type ProductResponse struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Price           decimal.Decimal          `json:"price"`
	Stock           int                      `json:"stock"`
	Min             int                      `json:"min"`
	Max             int                      `json:"max"`
	AssociatedParts []AssociatedPartResponse `json:"associatedParts"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// NewProductResponse resolves each association against parts, keyed by id.
func NewProductResponse(p inventory.Product, parts map[string]inventory.Part) ProductResponse {
	refs := make([]AssociatedPartResponse, len(p.AssociatedParts))
	for i, ap := range p.AssociatedParts {
		refs[i] = AssociatedPartResponse{PartID: ap.PartID, Name: ap.Name}
		if part, ok := parts[ap.PartID]; ok {
			resp := NewPartResponse(part)
			refs[i].Part = &resp
		}
	}
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Stock:           p.Stock,
		Min:             p.Min,
		Max:             p.Max,
		AssociatedParts: refs,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
