package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssociatedPart is a denormalized reference from a product to a part: the
// part id plus a snapshot of its name.
type AssociatedPart struct {
	PartID string
	Name   string
}

// Product is a validated inventory product.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Levels
	AssociatedParts []AssociatedPart
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanDeleteProduct reports whether p may be removed. Products that still
// list associated parts must be emptied first.
func CanDeleteProduct(p Product) bool {
	return len(p.AssociatedParts) == 0
}

// WithoutPart returns refs minus every entry pointing at partID, keeping the
// order of the rest, and how many entries were dropped.
func WithoutPart(refs []AssociatedPart, partID string) ([]AssociatedPart, int) {
	kept := make([]AssociatedPart, 0, len(refs))
	for _, ref := range refs {
		if ref.PartID == partID {
			continue
		}
		kept = append(kept, ref)
	}
	return kept, len(refs) - len(kept)
}

// PartIDs lists the distinct part ids referenced by p in first-seen order.
func (p Product) PartIDs() []string {
	seen := make(map[string]bool, len(p.AssociatedParts))
	ids := make([]string, 0, len(p.AssociatedParts))
	for _, ref := range p.AssociatedParts {
		if seen[ref.PartID] {
			continue
		}
		seen[ref.PartID] = true
		ids = append(ids, ref.PartID)
	}
	return ids
}
