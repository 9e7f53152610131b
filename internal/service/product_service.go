package service

import (
	"context"

	"sprockets/internal/dto"
	"sprockets/internal/inventory"
	"sprockets/internal/repository"
)

// ProductService defines the business logic contract for products. Every
// returned product has its associations resolved against the current parts.
type ProductService interface {
	Add(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id string) (*dto.ProductResponse, error)
	All(ctx context.Context) ([]dto.ProductResponse, error)
	Search(ctx context.Context, name string) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id string, req dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	catalog[inventory.Product, inventory.ProductInput]
	parts repository.PartRepository
}

func NewProductService(
	products repository.ProductRepository,
	parts repository.PartRepository,
	tx repository.Transactor,
) ProductService {
	return &productService{
		catalog: catalog[inventory.Product, inventory.ProductInput]{
			store: products,
			tx:    tx,
			rules: rules[inventory.Product, inventory.ProductInput]{
				validate: inventory.ValidateProduct,
				beforeDelete: func(_ context.Context, p inventory.Product) error {
					return GuardProductDelete(p)
				},
			},
		},
		parts: parts,
	}
}

func (s *productService) Add(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, err := s.add(ctx, req.Input())
	if err != nil {
		return nil, err
	}
	return s.one(ctx, *p)
}

func (s *productService) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.one(ctx, *p)
}

func (s *productService) All(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, products)
}

func (s *productService) Search(ctx context.Context, name string) ([]dto.ProductResponse, error) {
	products, err := s.search(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, products)
}

func (s *productService) Update(ctx context.Context, id string, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, err := s.update(ctx, id, req.Input())
	if err != nil {
		return nil, err
	}
	return s.one(ctx, *p)
}

func (s *productService) Delete(ctx context.Context, id string) error {
	_, err := s.remove(ctx, id)
	return err
}

func (s *productService) one(ctx context.Context, p inventory.Product) (*dto.ProductResponse, error) {
	out, err := s.resolve(ctx, []inventory.Product{p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// resolve loads every referenced part in one query and joins it into the
// responses. References to parts that no longer exist resolve to null.
func (s *productService) resolve(ctx context.Context, products []inventory.Product) ([]dto.ProductResponse, error) {
	byID, err := partsByID(ctx, s.parts, products)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, len(products))
	for i, p := range products {
		out[i] = dto.NewProductResponse(p, byID)
	}
	return out, nil
}

func partsByID(ctx context.Context, parts repository.PartRepository, products []inventory.Product) (map[string]inventory.Part, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range products {
		for _, id := range p.PartIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	byID := make(map[string]inventory.Part, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	found, err := parts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, part := range found {
		byID[part.ID] = part
	}
	return byID, nil
}
