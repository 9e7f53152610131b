package repository

import (
	"context"
	"errors"
	"strings"

	"sprockets/internal/inventory"

	trmgorm "github.com/avito-tech/go-transaction-manager/drivers/gorm/v2"
	"gorm.io/gorm"
)

// gormStore implements Store[T] over a GORM row type R. Every query runs in
// the transaction carried by ctx when there is one.
type gormStore[T any, R any] struct {
	db       *gorm.DB
	getter   *trmgorm.CtxGetter
	entity   string
	toRow    func(T) (R, error)
	toDomain func(R) T
}

func (s *gormStore[T, R]) conn(ctx context.Context) *gorm.DB {
	return s.getter.DefaultTrOrDB(ctx, s.db).WithContext(ctx)
}

func (s *gormStore[T, R]) Create(ctx context.Context, item *T) error {
	row, err := s.toRow(*item)
	if err != nil {
		return err
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return err
	}
	*item = s.toDomain(row)
	return nil
}

func (s *gormStore[T, R]) FindAll(ctx context.Context) ([]T, error) {
	var rows []R
	if err := s.conn(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.all(rows), nil
}

func (s *gormStore[T, R]) FindByID(ctx context.Context, id string) (*T, error) {
	uid, err := parseKey(id)
	if err != nil {
		return nil, err
	}
	var row R
	err = s.conn(ctx).First(&row, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, inventory.NotFound(s.entity)
	}
	if err != nil {
		return nil, err
	}
	item := s.toDomain(row)
	return &item, nil
}

func (s *gormStore[T, R]) FindByName(ctx context.Context, name string) ([]T, error) {
	var rows []R
	err := s.conn(ctx).
		Where("name ILIKE ?", "%"+escapeLike(name)+"%").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return s.all(rows), nil
}

func (s *gormStore[T, R]) Update(ctx context.Context, id string, item *T) error {
	uid, err := parseKey(id)
	if err != nil {
		return err
	}
	row, err := s.toRow(*item)
	if err != nil {
		return err
	}

	res := s.conn(ctx).Model(new(R)).
		Where("id = ?", uid).
		Select("*").Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return inventory.NotFound(s.entity)
	}

	var stored R
	if err := s.conn(ctx).First(&stored, "id = ?", uid).Error; err != nil {
		return err
	}
	*item = s.toDomain(stored)
	return nil
}

func (s *gormStore[T, R]) Delete(ctx context.Context, id string) error {
	uid, err := parseKey(id)
	if err != nil {
		return err
	}
	res := s.conn(ctx).Where("id = ?", uid).Delete(new(R))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return inventory.NotFound(s.entity)
	}
	return nil
}

func (s *gormStore[T, R]) all(rows []R) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = s.toDomain(r)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
