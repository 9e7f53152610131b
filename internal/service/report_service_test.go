package service_test

import (
	"context"
	"testing"

	"sprockets/internal/dto"
	"sprockets/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_Timestamps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gear, err := e.partSvc.Add(ctx, gearRequest())
	require.NoError(t, err)
	_, err = e.prodSvc.Add(ctx, productRequest("Gearbox"))
	require.NoError(t, err)
	require.NoError(t, e.users.Create(ctx, &model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ADA@example.com"}))

	parts, err := e.reports.PartsTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Parts Creation/Modification Report", parts.Title)
	require.Len(t, parts.Parts, 1)
	assert.Equal(t, dto.TimestampEntry{ID: gear.ID, Name: "Gear", CreatedAt: gear.CreatedAt, UpdatedAt: gear.UpdatedAt}, parts.Parts[0])

	products, err := e.reports.ProductsTimestamp(ctx)
	require.NoError(t, err)
	assert.Len(t, products.Products, 1)

	users, err := e.reports.UsersTimestamp(ctx)
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "ada@example.com", users.Users[0].Email)
}

func TestReportService_LowStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	low := gearRequest()
	low.Stock = ptr(1) // at min
	_, err := e.partSvc.Add(ctx, low)
	require.NoError(t, err)
	near := boltRequest()
	near.Stock = ptr(12) // min 10
	_, err = e.partSvc.Add(ctx, near)
	require.NoError(t, err)
	_, err = e.prodSvc.Add(ctx, productRequest("Gearbox")) // stock 3, min 1
	require.NoError(t, err)

	r, err := e.reports.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, r.Parts, 1)
	assert.Equal(t, "Gear", r.Parts[0].Name)
	assert.Equal(t, 0, r.Parts[0].Headroom)
	assert.Empty(t, r.Products)

	r, err = e.reports.LowStock(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, r.Parts, 2)
	assert.Len(t, r.Products, 1)
	assert.Equal(t, 2, r.Threshold)
}

func TestReportService_PartsByType(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.partSvc.Add(ctx, gearRequest())
	require.NoError(t, err)
	_, err = e.partSvc.Add(ctx, boltRequest())
	require.NoError(t, err)
	second := boltRequest()
	second.Name = ptr("Nut")
	_, err = e.partSvc.Add(ctx, second)
	require.NoError(t, err)

	r, err := e.reports.PartsByType(ctx)
	require.NoError(t, err)
	require.Len(t, r.Groups, 2)
	assert.Equal(t, "InHouse", r.Groups[0].Type)
	assert.Equal(t, 1, r.Groups[0].Count)
	assert.Equal(t, "MCH-001", r.Groups[0].Parts[0].Source)
	assert.Equal(t, "Outsourced", r.Groups[1].Type)
	assert.Equal(t, 2, r.Groups[1].Count)
}

func TestReportService_ProductPartsAssociationFlagsMissing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gear, err := e.partSvc.Add(ctx, gearRequest())
	require.NoError(t, err)

	ghost := dto.AssociatedPartRequest{PartID: ptr("0000000000000000000000aa"), Name: ptr("Ghost")}
	_, err = e.prodSvc.Add(ctx, productRequest("Gearbox", ref(gear), ghost))
	require.NoError(t, err)

	r, err := e.reports.ProductPartsAssociation(ctx)
	require.NoError(t, err)
	require.Len(t, r.Products, 1)
	p := r.Products[0]
	assert.Equal(t, 1, p.MissingParts)
	assert.True(t, p.Parts[0].Exists)
	assert.False(t, p.Parts[1].Exists)
}
