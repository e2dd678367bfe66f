package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

type productDoc struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty"`
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Position int                  `bson:"position"`
}

func (d productDoc) toModel() (model.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("decode price: %w", err)
	}
	return model.Product{ID: d.ID.Hex(), Name: d.Name, Price: price}, nil
}

// Products reads the catalog from the products collection.
type Products struct {
	coll *mongo.Collection
}

// NewProducts creates a new Products repository.
func NewProducts(db *mongo.Database) *Products {
	return &Products{coll: db.Collection(productsCollection)}
}

var _ repository.ProductRepository = (*Products)(nil)

// List returns all products ordered by position.
func (r *Products) List(ctx context.Context) ([]model.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FindByID fetches a single product by hex ObjectID.
func (r *Products) FindByID(ctx context.Context, id string) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Seed inserts products when the collection is empty. A concurrent seeder losing the
// race on the position index is treated as already seeded.
func (r *Products) Seed(ctx context.Context, products []model.Product) ([]model.Product, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if n == 0 && len(products) > 0 {
		docs := make([]any, 0, len(products))
		for i, p := range products {
			price, err := toDecimal128(model.Round(p.Price))
			if err != nil {
				return nil, fmt.Errorf("encode price of %q: %w", p.Name, err)
			}
			docs = append(docs, productDoc{ID: primitive.NewObjectID(), Name: p.Name, Price: price, Position: i})
		}
		if _, err := r.coll.InsertMany(ctx, docs); err != nil && !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert products: %w", err)
		}
	}
	return r.List(ctx)
}
