package repository

import (
	"context"

	"sprockets/internal/inventory"
	"sprockets/internal/model"

	trmgorm "github.com/avito-tech/go-transaction-manager/drivers/gorm/v2"
	"gorm.io/gorm"
)

type productRepo struct {
	*gormStore[inventory.Product, model.Product]
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{&gormStore[inventory.Product, model.Product]{
		db:       db,
		getter:   trmgorm.DefaultCtxGetter,
		entity:   inventory.EntityProduct,
		toRow:    model.NewProduct,
		toDomain: model.Product.Domain,
	}}
}

// stripPartSQL rebuilds associated_parts without the entries for one part id,
// keeping the original order of the remaining entries.
const stripPartSQL = `COALESCE((
	SELECT jsonb_agg(e.value ORDER BY e.ord)
	FROM jsonb_array_elements(associated_parts) WITH ORDINALITY AS e(value, ord)
	WHERE e.value->>'partId' <> ?
), '[]'::jsonb)`

// RemovePartReferences only touches products whose array contains the part
// (served by the GIN index on associated_parts).
func (r *productRepo) RemovePartReferences(ctx context.Context, partID string) (int64, error) {
	res := r.conn(ctx).Model(&model.Product{}).
		Where("associated_parts @> jsonb_build_array(jsonb_build_object('partId', ?::text))", partID).
		Update("associated_parts", gorm.Expr(stripPartSQL, partID))
	return res.RowsAffected, res.Error
}
