package service

import (
	"context"
	"fmt"

	"sprockets/internal/inventory"
	"sprockets/internal/repository"

	"github.com/rs/zerolog/log"
)

// OnPartDeleted drops every association to partID from every product. The
// part service runs it before removing the part, so a failure here leaves
// the part and its references as they were.
func OnPartDeleted(ctx context.Context, products repository.ProductRepository, partID string) error {
	n, err := products.RemovePartReferences(ctx, partID)
	if err != nil {
		return fmt.Errorf("remove references to part %s: %w", partID, err)
	}
	if n > 0 {
		log.Info().Str("part_id", partID).Int64("products", n).Msg("removed deleted part from products")
	}
	return nil
}

// GuardProductDelete refuses to delete a product that still lists parts.
func GuardProductDelete(p inventory.Product) error {
	if !inventory.CanDeleteProduct(p) {
		return inventory.ErrProductHasParts
	}
	return nil
}
