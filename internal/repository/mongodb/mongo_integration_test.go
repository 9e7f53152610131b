//go:build integration

package mongodb_test

import (
	"context"
	"errors"
	"testing"

	"sprockets/internal/infra"
	"sprockets/internal/inventory"
	"sprockets/internal/model"
	"sprockets/internal/repository"
	"sprockets/internal/repository/mongodb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
)

type mongoEnv struct {
	parts    repository.PartRepository
	products repository.ProductRepository
	users    repository.UserRepository
	tx       repository.Transactor
}

func setupMongo(t *testing.T) *mongoEnv {
	t.Helper()
	ctx := context.Background()

	c, err := tcMongo.Run(ctx, "mongo:7", tcMongo.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	uri, err := c.ConnectionString(ctx)
	require.NoError(t, err)

	client, db, err := infra.NewMongo(uri, "sprockets_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	require.NoError(t, mongodb.EnsureIndexes(ctx, db))

	return &mongoEnv{
		parts:    mongodb.NewPartRepository(db),
		products: mongodb.NewProductRepository(db),
		users:    mongodb.NewUserRepository(db),
		tx:       mongodb.NewTransactor(client),
	}
}

func part(name string) *inventory.Part {
	return &inventory.Part{
		Name:   name,
		Price:  decimal.RequireFromString("0.25"),
		Levels: inventory.Levels{Stock: 100, Min: 10, Max: 500},
		Source: inventory.Outsourced{CompanyName: "Acme"},
	}
}

func TestMongo_PartCRUD(t *testing.T) {
	env := setupMongo(t)
	ctx := context.Background()

	bolt := part("Bolt")
	require.NoError(t, env.parts.Create(ctx, bolt))
	assert.Len(t, bolt.ID, 24)

	got, err := env.parts.FindByID(ctx, bolt.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, inventory.Outsourced{CompanyName: "Acme"}, got.Source)
	assert.True(t, bolt.CreatedAt.Equal(got.CreatedAt))

	changed := *got
	changed.Name = "Hex Bolt"
	changed.Source = inventory.InHouse{MachineID: "MCH-9"}
	require.NoError(t, env.parts.Update(ctx, bolt.ID, &changed))
	assert.True(t, bolt.CreatedAt.Equal(changed.CreatedAt))
	assert.Nil(t, changed.CompanyName())

	found, err := env.parts.FindByName(ctx, "hex (")
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = env.parts.FindByName(ctx, "HEX")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = env.parts.FindByID(ctx, "xyz")
	assert.ErrorIs(t, err, inventory.ErrInvalidID)

	require.NoError(t, env.parts.Delete(ctx, bolt.ID))
	assert.ErrorIs(t, env.parts.Delete(ctx, bolt.ID), inventory.ErrNotFound)
}

func TestMongo_RemovePartReferencesInTransaction(t *testing.T) {
	env := setupMongo(t)
	ctx := context.Background()

	gear, bolt := part("Gear"), part("Bolt")
	require.NoError(t, env.parts.Create(ctx, gear))
	require.NoError(t, env.parts.Create(ctx, bolt))

	gearbox := &inventory.Product{
		Name:   "Gearbox",
		Price:  decimal.RequireFromString("99.99"),
		Levels: inventory.Levels{Stock: 3, Min: 1, Max: 5},
		AssociatedParts: []inventory.AssociatedPart{
			{PartID: gear.ID, Name: "Gear"},
			{PartID: bolt.ID, Name: "Bolt"},
		},
	}
	require.NoError(t, env.products.Create(ctx, gearbox))

	// A failing transaction leaves both collections untouched.
	boom := errors.New("boom")
	err := env.tx.Do(ctx, func(ctx context.Context) error {
		if err := env.parts.Delete(ctx, gear.ID); err != nil {
			return err
		}
		if _, err := env.products.RemovePartReferences(ctx, gear.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = env.parts.FindByID(ctx, gear.ID)
	require.NoError(t, err)
	got, err := env.products.FindByID(ctx, gearbox.ID)
	require.NoError(t, err)
	assert.Len(t, got.AssociatedParts, 2)

	n, err := env.products.RemovePartReferences(ctx, gear.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err = env.products.FindByID(ctx, gearbox.ID)
	require.NoError(t, err)
	assert.Equal(t, []inventory.AssociatedPart{{PartID: bolt.ID, Name: "Bolt"}}, got.AssociatedParts)
	assert.False(t, got.UpdatedAt.Before(gearbox.UpdatedAt))

	ps, err := env.parts.FindByIDs(ctx, []string{gear.ID, bolt.ID, "bad"})
	require.NoError(t, err)
	assert.Len(t, ps, 2)
}

func TestMongo_Users(t *testing.T) {
	env := setupMongo(t)
	ctx := context.Background()

	u := &model.User{FirstName: "Ada", LastName: "Lovelace", Email: "Ada@Example.com", PasswordHash: "x"}
	require.NoError(t, env.users.Create(ctx, u))

	got, err := env.users.FindByID(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	err = env.users.Create(ctx, &model.User{FirstName: "A", LastName: "L", Email: "ADA@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	_, err = env.users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
