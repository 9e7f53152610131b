package repository

import (
	"context"

	"sprockets/internal/inventory"
	"sprockets/internal/model"
)

// Store is the persistence contract shared by every inventory entity.
// Services depend on these interfaces, not on a concrete backend, so the
// Postgres and Mongo stores (and test stubs) are interchangeable.
//
// FindByID, Update and Delete return an *inventory.NotFoundError for unknown
// ids and inventory.ErrInvalidID for ids the backend could never have issued.
type Store[T any] interface {
	// Create assigns the id and both timestamps and writes them back into item.
	Create(ctx context.Context, item *T) error
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	// FindByName matches name as a case-insensitive literal substring.
	FindByName(ctx context.Context, name string) ([]T, error)
	// Update replaces the mutable fields of the record with the given id. The
	// stored id, createdAt and refreshed updatedAt are written back into item.
	Update(ctx context.Context, id string, item *T) error
	Delete(ctx context.Context, id string) error
}

type PartRepository interface {
	Store[inventory.Part]
	// FindByIDs returns the parts that exist among ids, in no particular
	// order. Malformed ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]inventory.Part, error)
}

type ProductRepository interface {
	Store[inventory.Product]
	// RemovePartReferences drops every associated-part entry pointing at
	// partID from every product and returns how many products changed.
	RemovePartReferences(ctx context.Context, partID string) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
}

// Transactor runs fn so that every store call made with the context it
// receives commits or rolls back together.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTx runs fn directly. Used where the backend has no transactions.
type NoTx struct{}

func (NoTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
