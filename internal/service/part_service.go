package service

import (
	"context"
	"time"

	"sprockets/internal/dto"
	"sprockets/internal/inventory"
	"sprockets/internal/repository"

	"github.com/redis/go-redis/v9"
)

// PartService defines the business logic contract for parts.
type PartService interface {
	Add(ctx context.Context, req dto.PartRequest) (*dto.PartResponse, error)
	Get(ctx context.Context, id string) (*dto.PartResponse, error)
	All(ctx context.Context) ([]dto.PartResponse, error)
	Search(ctx context.Context, name string) ([]dto.PartResponse, error)
	Update(ctx context.Context, id string, req dto.PartRequest) (*dto.PartResponse, error)
	Delete(ctx context.Context, id string) error
}

type partService struct {
	catalog[inventory.Part, inventory.PartInput]
	cache partCache
}

// NewPartService wires part storage to the product store for the delete
// cascade. rdb may be nil to run without the lookup cache.
func NewPartService(
	parts repository.PartRepository,
	products repository.ProductRepository,
	tx repository.Transactor,
	rdb *redis.Client,
	cacheTTL time.Duration,
) PartService {
	return &partService{
		catalog: catalog[inventory.Part, inventory.PartInput]{
			store: parts,
			tx:    tx,
			rules: rules[inventory.Part, inventory.PartInput]{
				validate: inventory.ValidatePart,
				beforeDelete: func(ctx context.Context, p inventory.Part) error {
					return OnPartDeleted(ctx, products, p.ID)
				},
			},
		},
		cache: newPartCache(rdb, cacheTTL),
	}
}

func (s *partService) Add(ctx context.Context, req dto.PartRequest) (*dto.PartResponse, error) {
	p, err := s.add(ctx, req.Input())
	if err != nil {
		return nil, err
	}
	resp := dto.NewPartResponse(*p)
	return &resp, nil
}

func (s *partService) Get(ctx context.Context, id string) (*dto.PartResponse, error) {
	if resp, ok := s.cache.get(ctx, id); ok {
		return resp, nil
	}
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPartResponse(*p)
	s.cache.set(ctx, &resp)
	return &resp, nil
}

func (s *partService) All(ctx context.Context) ([]dto.PartResponse, error) {
	parts, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewPartResponses(parts), nil
}

func (s *partService) Search(ctx context.Context, name string) ([]dto.PartResponse, error) {
	parts, err := s.search(ctx, name)
	if err != nil {
		return nil, err
	}
	return dto.NewPartResponses(parts), nil
}

func (s *partService) Update(ctx context.Context, id string, req dto.PartRequest) (*dto.PartResponse, error) {
	p, err := s.update(ctx, id, req.Input())
	if err != nil {
		return nil, err
	}
	s.cache.drop(ctx, p.ID)
	resp := dto.NewPartResponse(*p)
	return &resp, nil
}

func (s *partService) Delete(ctx context.Context, id string) error {
	p, err := s.remove(ctx, id)
	if err != nil {
		return err
	}
	s.cache.drop(ctx, p.ID)
	return nil
}
