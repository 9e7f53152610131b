package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"sprockets/internal/inventory"
	"sprockets/internal/model"
	"sprockets/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	partsCollection    = "parts"
	productsCollection = "products"
	usersCollection    = "users"
)

// ── Parts ────────────────────────────────────────────────────────────────────

type partRepo struct {
	*store[inventory.Part, partDoc]
}

func NewPartRepository(db *mongo.Database) repository.PartRepository {
	return &partRepo{&store[inventory.Part, partDoc]{
		coll:     db.Collection(partsCollection),
		entity:   inventory.EntityPart,
		toDoc:    newPartDoc,
		toDomain: partDoc.domain,
		meta:     func(d *partDoc) *Meta { return &d.Meta },
	}}
}

func (r *partRepo) FindByIDs(ctx context.Context, ids []string) ([]inventory.Part, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := parseObjectID(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// ── Products ─────────────────────────────────────────────────────────────────

type productRepo struct {
	*store[inventory.Product, productDoc]
}

func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepo{&store[inventory.Product, productDoc]{
		coll:     db.Collection(productsCollection),
		entity:   inventory.EntityProduct,
		toDoc:    newProductDoc,
		toDomain: productDoc.domain,
		meta:     func(d *productDoc) *Meta { return &d.Meta },
	}}
}

func (r *productRepo) RemovePartReferences(ctx context.Context, partID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"associatedParts.partId": partID},
		bson.M{
			"$pull": bson.M{"associatedParts": bson.M{"partId": partID}},
			"$set":  bson.M{"updatedAt": now()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type userRepo struct{ coll *mongo.Collection }

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepo{coll: db.Collection(usersCollection)}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.coll.InsertOne(ctx, userDoc{
		ID:           u.ID.String(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]model.User, len(docs))
	for i, d := range docs {
		users[i] = d.model()
	}
	return users, nil
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var d userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u := d.model()
	return &u, nil
}

func (d userDoc) model() model.User {
	id, _ := uuid.Parse(d.ID)
	return model.User{
		ID:           id,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ── Indexes & transactions ───────────────────────────────────────────────────

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	for _, name := range []string{partsCollection, productsCollection} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
		}); err != nil {
			return err
		}
	}
	_, err := db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "associatedParts.partId", Value: 1}},
	})
	return err
}

// Transactor runs fn inside a multi-document transaction. It needs a replica
// set or sharded cluster; standalone servers should use repository.NoTx.
type Transactor struct {
	client *mongo.Client
}

func NewTransactor(client *mongo.Client) *Transactor { return &Transactor{client: client} }

func (t *Transactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

var _ repository.Transactor = (*Transactor)(nil)
