package service

import (
	"context"
	"strings"

	"sprockets/internal/repository"
)

// rules holds what differs between the inventory entities. The CRUD and
// search flow in catalog is shared.
type rules[T any, In any] struct {
	validate func(In) (T, error)
	// beforeDelete runs inside the delete transaction, after the record has
	// been loaded and before it is removed. A non-nil error aborts the delete
	// and leaves the record in place, with or without a real transaction.
	beforeDelete func(ctx context.Context, item T) error
}

type catalog[T any, In any] struct {
	store repository.Store[T]
	tx    repository.Transactor
	rules rules[T, In]
}

func (s *catalog[T, In]) add(ctx context.Context, in In) (*T, error) {
	item, err := s.rules.validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *catalog[T, In]) get(ctx context.Context, id string) (*T, error) {
	return s.store.FindByID(ctx, id)
}

func (s *catalog[T, In]) all(ctx context.Context) ([]T, error) {
	return s.store.FindAll(ctx)
}

// search treats blank text as "everything".
func (s *catalog[T, In]) search(ctx context.Context, text string) ([]T, error) {
	if strings.TrimSpace(text) == "" {
		return s.store.FindAll(ctx)
	}
	return s.store.FindByName(ctx, text)
}

// update validates the full replacement before touching the store, so an
// invalid edit leaves the stored record as it was.
func (s *catalog[T, In]) update(ctx context.Context, id string, in In) (*T, error) {
	item, err := s.rules.validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// remove loads the record, runs beforeDelete, then deletes it. It returns
// the record as stored, so callers see its canonical id.
func (s *catalog[T, In]) remove(ctx context.Context, id string) (*T, error) {
	var removed *T
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		item, err := s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if s.rules.beforeDelete != nil {
			if err := s.rules.beforeDelete(ctx, *item); err != nil {
				return err
			}
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return err
		}
		removed = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
