package service

import (
	"context"
	"time"

	"sprockets/internal/dto"
	"sprockets/internal/inventory"
	"sprockets/internal/repository"
)

// ReportService builds the read-only inventory reports.
type ReportService interface {
	PartsTimestamp(ctx context.Context) (*dto.PartsTimestampReport, error)
	ProductsTimestamp(ctx context.Context) (*dto.ProductsTimestampReport, error)
	UsersTimestamp(ctx context.Context) (*dto.UsersTimestampReport, error)
	// LowStock lists records with stock - min <= threshold.
	LowStock(ctx context.Context, threshold int) (*dto.LowStockReport, error)
	PartsByType(ctx context.Context) (*dto.PartsByTypeReport, error)
	ProductPartsAssociation(ctx context.Context) (*dto.ProductPartsAssociationReport, error)
}

type reportService struct {
	parts    repository.PartRepository
	products repository.ProductRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewReportService(
	parts repository.PartRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
) ReportService {
	return &reportService{parts: parts, products: products, users: users, now: time.Now}
}

func (s *reportService) PartsTimestamp(ctx context.Context) (*dto.PartsTimestampReport, error) {
	parts, err := s.parts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.TimestampEntry, len(parts))
	for i, p := range parts {
		entries[i] = dto.TimestampEntry{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
	}
	return &dto.PartsTimestampReport{
		Title: "Parts Creation/Modification Report",
		Date:  s.now(),
		Parts: entries,
	}, nil
}

func (s *reportService) ProductsTimestamp(ctx context.Context) (*dto.ProductsTimestampReport, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.TimestampEntry, len(products))
	for i, p := range products {
		entries[i] = dto.TimestampEntry{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
	}
	return &dto.ProductsTimestampReport{
		Title:    "Products Creation/Modification Report",
		Date:     s.now(),
		Products: entries,
	}, nil
}

func (s *reportService) UsersTimestamp(ctx context.Context) (*dto.UsersTimestampReport, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.UserTimestampEntry, len(users))
	for i, u := range users {
		entries[i] = dto.UserTimestampEntry{
			ID:        u.ID.String(),
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}
	}
	return &dto.UsersTimestampReport{
		Title: "Users Creation/Modification Report",
		Date:  s.now(),
		Users: entries,
	}, nil
}

func (s *reportService) LowStock(ctx context.Context, threshold int) (*dto.LowStockReport, error) {
	parts, err := s.parts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.LowStockReport{
		Title:     "Low Stock Report",
		Date:      s.now(),
		Threshold: threshold,
		Parts:     []dto.LowStockEntry{},
		Products:  []dto.LowStockEntry{},
	}
	for _, p := range parts {
		if e, low := lowStock(p.ID, p.Name, p.Levels, threshold); low {
			report.Parts = append(report.Parts, e)
		}
	}
	for _, p := range products {
		if e, low := lowStock(p.ID, p.Name, p.Levels, threshold); low {
			report.Products = append(report.Products, e)
		}
	}
	return report, nil
}

func lowStock(id, name string, l inventory.Levels, threshold int) (dto.LowStockEntry, bool) {
	headroom := l.Stock - l.Min
	return dto.LowStockEntry{
		ID: id, Name: name, Stock: l.Stock, Min: l.Min, Max: l.Max, Headroom: headroom,
	}, headroom <= threshold
}

func (s *reportService) PartsByType(ctx context.Context) (*dto.PartsByTypeReport, error) {
	parts, err := s.parts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	groups := []dto.PartTypeGroup{
		{Type: string(inventory.InHouseType), Parts: []dto.PartSummary{}},
		{Type: string(inventory.OutsourcedType), Parts: []dto.PartSummary{}},
	}
	for _, p := range parts {
		var g *dto.PartTypeGroup
		var source string
		switch src := p.Source.(type) {
		case inventory.InHouse:
			g, source = &groups[0], src.MachineID
		case inventory.Outsourced:
			g, source = &groups[1], src.CompanyName
		default:
			continue
		}
		g.Parts = append(g.Parts, dto.PartSummary{ID: p.ID, Name: p.Name, Source: source, Stock: p.Stock})
		g.Count++
	}
	return &dto.PartsByTypeReport{
		Title:  "Parts by Type Report",
		Date:   s.now(),
		Groups: groups,
	}, nil
}

func (s *reportService) ProductPartsAssociation(ctx context.Context) (*dto.ProductPartsAssociationReport, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byID, err := partsByID(ctx, s.parts, products)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProductAssociation, len(products))
	for i, p := range products {
		entries := make([]dto.AssociationEntry, len(p.AssociatedParts))
		missing := 0
		for j, ap := range p.AssociatedParts {
			_, ok := byID[ap.PartID]
			entries[j] = dto.AssociationEntry{PartID: ap.PartID, Name: ap.Name, Exists: ok}
			if !ok {
				missing++
			}
		}
		out[i] = dto.ProductAssociation{ID: p.ID, Name: p.Name, Parts: entries, MissingParts: missing}
	}
	return &dto.ProductPartsAssociationReport{
		Title:    "Product Parts Association Report",
		Date:     s.now(),
		Products: out,
	}, nil
}
