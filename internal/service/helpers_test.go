package service_test

import (
	"testing"

	"sprockets/internal/config"
	"sprockets/internal/dto"
	"sprockets/internal/repository/repotest"
	"sprockets/internal/service"

	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type env struct {
	parts    *repotest.Parts
	products *repotest.Products
	users    *repotest.Users
	tx       *repotest.Tx
	partSvc  service.PartService
	prodSvc  service.ProductService
	reports  service.ReportService
	auth     service.AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	parts, products, users := repotest.NewParts(), repotest.NewProducts(), repotest.NewUsers()
	tx := &repotest.Tx{Parts: parts, Products: products}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
	return &env{
		parts:    parts,
		products: products,
		users:    users,
		tx:       tx,
		partSvc:  service.NewPartService(parts, products, tx, nil, 0),
		prodSvc:  service.NewProductService(products, parts, tx),
		reports:  service.NewReportService(parts, products, users),
		auth:     service.NewAuthService(users, cfg),
	}
}

func gearRequest() dto.PartRequest {
	return dto.PartRequest{
		Name:      ptr("Gear"),
		Price:     price("12.50"),
		Stock:     ptr(5),
		Min:       ptr(1),
		Max:       ptr(10),
		Type:      ptr("InHouse"),
		MachineID: ptr("MCH-001"),
	}
}

func boltRequest() dto.PartRequest {
	return dto.PartRequest{
		Name:        ptr("Bolt"),
		Price:       price("0.25"),
		Stock:       ptr(100),
		Min:         ptr(10),
		Max:         ptr(500),
		Type:        ptr("Outsourced"),
		CompanyName: ptr("Acme"),
	}
}

func productRequest(name string, refs ...dto.AssociatedPartRequest) dto.ProductRequest {
	return dto.ProductRequest{
		Name:            ptr(name),
		Price:           price("99.99"),
		Stock:           ptr(3),
		Min:             ptr(1),
		Max:             ptr(5),
		AssociatedParts: refs,
	}
}

func ref(p *dto.PartResponse) dto.AssociatedPartRequest {
	return dto.AssociatedPartRequest{PartID: ptr(p.ID), Name: ptr(p.Name)}
}
