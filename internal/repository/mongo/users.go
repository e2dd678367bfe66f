package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

// maxUpdateAttempts bounds the compare-and-swap loop in Update.
const maxUpdateAttempts = 10

type cartLineDoc struct {
	ProductID string `bson:"productId"`
	Quantity  int    `bson:"quantity"`
}

type userDoc struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty"`
	Username string               `bson:"username"`
	Balance  primitive.Decimal128 `bson:"balance"`
	Cart     []cartLineDoc        `bson:"cart"`
	Version  int64                `bson:"version"`
}

func (d userDoc) toModel() (*model.User, error) {
	bal, err := fromDecimal128(d.Balance)
	if err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	u := &model.User{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Balance:  bal,
		Cart:     make([]model.CartLineItem, 0, len(d.Cart)),
	}
	for _, l := range d.Cart {
		u.Cart = append(u.Cart, model.CartLineItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return u, nil
}

func cartDocs(cart []model.CartLineItem) []cartLineDoc {
	out := make([]cartLineDoc, 0, len(cart))
	for _, l := range cart {
		out = append(out, cartLineDoc{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

// Users stores users in the users collection.
type Users struct {
	coll *mongo.Collection
}

// NewUsers creates a new Users repository.
func NewUsers(db *mongo.Database) *Users {
	return &Users{coll: db.Collection(usersCollection)}
}

var _ repository.UserRepository = (*Users)(nil)

// Create inserts the user. Uniqueness of username is enforced by the index.
func (r *Users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	bal, err := toDecimal128(u.Balance)
	if err != nil {
		return nil, fmt.Errorf("encode balance: %w", err)
	}
	doc := userDoc{
		ID:       primitive.NewObjectID(),
		Username: u.Username,
		Balance:  bal,
		Cart:     cartDocs(u.Cart),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return doc.toModel()
}

// FindByID returns the user with the given hex ObjectID.
func (r *Users) FindByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

// Update re-reads the user and retries fn until its write lands on an unchanged version.
func (r *Users) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.User, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		doc, err := r.find(ctx, id)
		if err != nil {
			return nil, err
		}
		u, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		u.ID, u.Username = doc.ID.Hex(), doc.Username

		bal, err := toDecimal128(u.Balance)
		if err != nil {
			return nil, fmt.Errorf("encode balance: %w", err)
		}
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": doc.ID, "version": doc.Version},
			bson.M{
				"$set": bson.M{"balance": bal, "cart": cartDocs(u.Cart)},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return u, nil
		}
	}
	return nil, repository.ErrConcurrentUpdate
}

// Ping checks the server answers.
func (r *Users) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *Users) find(ctx context.Context, id string) (*userDoc, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}
