package repository

import (
	"context"

	"sprockets/internal/inventory"
	"sprockets/internal/model"

	trmgorm "github.com/avito-tech/go-transaction-manager/drivers/gorm/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type partRepo struct {
	*gormStore[inventory.Part, model.Part]
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepo{&gormStore[inventory.Part, model.Part]{
		db:       db,
		getter:   trmgorm.DefaultCtxGetter,
		entity:   inventory.EntityPart,
		toRow:    model.NewPart,
		toDomain: model.Part.Domain,
	}}
}

func (r *partRepo) FindByIDs(ctx context.Context, ids []string) ([]inventory.Part, error) {
	keys := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if uid, err := parseKey(id); err == nil {
			keys = append(keys, uid)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	var rows []model.Part
	if err := r.conn(ctx).Where("id IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.all(rows), nil
}

// parseKey rejects the empty id, which model.ParseID accepts for new rows.
func parseKey(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, inventory.ErrInvalidID
	}
	return model.ParseID(id)
}
