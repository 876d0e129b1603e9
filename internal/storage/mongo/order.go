package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xenking/shop-wallet/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// customer_id is stored as an ObjectID when the reference parses as one, so
// the field stays joinable with customers._id; other values are kept as strings.
type orderDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	CustomerID   any                  `bson:"customer_id"`
	ProductName  string               `bson:"product_name"`
	ProductPrice primitive.Decimal128 `bson:"product_price"`
	PurchaseDate time.Time            `bson:"purchase_date"`
}

type orderRow struct {
	ID           primitive.ObjectID   `bson:"_id"`
	CustomerID   bson.RawValue        `bson:"customer_id"`
	ProductName  string               `bson:"product_name"`
	ProductPrice primitive.Decimal128 `bson:"product_price"`
	PurchaseDate time.Time            `bson:"purchase_date"`
}

func customerRef(id string) any {
	if oid, ok := objectID(id); ok {
		return oid
	}
	return id
}

func (r orderRow) toDomain() (order.Order, error) {
	price, err := fromDecimal128(r.ProductPrice)
	if err != nil {
		return order.Order{}, err
	}

	var customerID string
	if oid, ok := r.CustomerID.ObjectIDOK(); ok {
		customerID = oid.Hex()
	} else if s, ok := r.CustomerID.StringValueOK(); ok {
		customerID = s
	}

	return order.Order{
		ID:           r.ID.Hex(),
		CustomerID:   customerID,
		ProductName:  r.ProductName,
		ProductPrice: price,
		PurchaseDate: r.PurchaseDate.UTC(),
	}, nil
}

// OrderRepository implements order.Repository on the orders collection.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository returns an OrderRepository using db.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(ordersCollection)}
}

// Create inserts o and assigns its ID.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	o.ProductPrice = fitDecimal128(o.ProductPrice)
	price, err := toDecimal128(o.ProductPrice)
	if err != nil {
		return err
	}
	if o.PurchaseDate.IsZero() {
		o.PurchaseDate = time.Now().UTC()
	}

	doc := orderDoc{
		ID:           primitive.NewObjectID(),
		CustomerID:   customerRef(o.CustomerID),
		ProductName:  o.ProductName,
		ProductPrice: price,
		// BSON dates carry millisecond precision.
		PurchaseDate: o.PurchaseDate.Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	o.ID = doc.ID.Hex()
	o.PurchaseDate = doc.PurchaseDate
	return nil
}

// List returns all orders in insertion order.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	return r.find(ctx, bson.D{})
}

// ListByCustomer returns the orders referencing customerID.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	return r.find(ctx, bson.D{{Key: "customer_id", Value: customerRef(customerID)}})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.D) ([]order.Order, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	var rows []orderRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}

	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
