// Package mongo stores expenses in a MongoDB collection. Idempotency keys are
// protected by a sparse unique index, so documents without a key never
// collide with each other.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

const idempotencyKeyIndex = "ux_expenses_idempotency_key"

type document struct {
	ID             string    `bson:"_id"`
	AmountCents    int64     `bson:"amount_cents"`
	Category       string    `bson:"category"`
	Description    string    `bson:"description"`
	Date           string    `bson:"date"`
	CreatedAt      time.Time `bson:"created_at"`
	IdempotencyKey string    `bson:"idempotency_key,omitempty"`
	// Seq orders documents inserted within the same millisecond.
	Seq primitive.ObjectID `bson:"seq"`
}

type Repository struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

var _ storage.Store = (*Repository)(nil)

// Open connects to uri and makes sure the collection indexes exist.
func Open(ctx context.Context, uri, database, collection string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	r := &Repository{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetName(idempotencyKeyIndex).
				SetUnique(true).
				SetSparse(true),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	// BSON dates carry millisecond precision.
	e.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	doc := toDocument(e)
	doc.Seq = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.Expense{}, fmt.Errorf("insert expense: %w", core.ErrDuplicateKey)
		}
		return core.Expense{}, core.Unavailable("insert expense", err)
	}
	return e, nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, key string) (core.Expense, error) {
	var doc document
	err := r.coll.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.Expense{}, core.ErrNotFound
		}
		return core.Expense{}, core.Unavailable("find expense by idempotency key", err)
	}
	return doc.toCore(), nil
}

func (r *Repository) List(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	cur, err := r.coll.Find(ctx, listFilter(q), options.Find().SetSort(listSort(q.Sort)))
	if err != nil {
		return nil, core.Unavailable("list expenses", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, core.Unavailable("decode expenses", err)
	}
	out := make([]core.Expense, len(docs))
	for i, d := range docs {
		out[i] = d.toCore()
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return core.Unavailable("delete expense", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return core.Unavailable("ping mongodb", err)
	}
	return nil
}

func (r *Repository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func listFilter(q core.ListQuery) bson.M {
	if q.Category == "" {
		return bson.M{}
	}
	return bson.M{"category": q.Category}
}

func listSort(o core.SortOrder) bson.D {
	if o == core.SortDateDesc {
		return bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}
}

func toDocument(e core.Expense) document {
	return document{
		ID:             e.ID,
		AmountCents:    e.Amount.Cents,
		Category:       e.Category,
		Description:    e.Description,
		Date:           e.Date,
		CreatedAt:      e.CreatedAt,
		IdempotencyKey: e.IdempotencyKey,
	}
}

func (d document) toCore() core.Expense {
	return core.Expense{
		ID:             d.ID,
		Amount:         core.Money{Cents: d.AmountCents},
		Category:       d.Category,
		Description:    d.Description,
		Date:           d.Date,
		CreatedAt:      d.CreatedAt.UTC(),
		IdempotencyKey: d.IdempotencyKey,
	}
}
