package mongo

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xenking/shop-wallet/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

type customerDoc struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty"`
	Name         string                `bson:"name"`
	Email        string                `bson:"email"`
	Password     string                `bson:"password"`
	Phone        string                `bson:"phone"`
	RateDiscount *primitive.Decimal128 `bson:"rate_discount"`
	Wallet       primitive.Decimal128  `bson:"wallet"`
	Version      int64                 `bson:"version"`
}

// fitCustomer rounds the money fields of c to what the document can store, so
// the caller's copy matches what is persisted.
func fitCustomer(c *customer.Customer) {
	c.Wallet = fitDecimal128(c.Wallet)
	if c.RateDiscount != nil {
		rate := fitDecimal128(*c.RateDiscount)
		c.RateDiscount = &rate
	}
}

func newCustomerDoc(c *customer.Customer) (customerDoc, error) {
	wallet, err := toDecimal128(c.Wallet)
	if err != nil {
		return customerDoc{}, err
	}
	doc := customerDoc{
		Name:     c.Name,
		Email:    c.Email,
		Password: c.PasswordHash,
		Phone:    c.Phone,
		Wallet:   wallet,
		Version:  c.Version,
	}
	if c.RateDiscount != nil {
		rate, err := toDecimal128(*c.RateDiscount)
		if err != nil {
			return customerDoc{}, err
		}
		doc.RateDiscount = &rate
	}
	return doc, nil
}

func (d customerDoc) toDomain() (customer.Customer, error) {
	wallet, err := fromDecimal128(d.Wallet)
	if err != nil {
		return customer.Customer{}, err
	}
	c := customer.Customer{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Phone:        d.Phone,
		Wallet:       wallet,
		Version:      d.Version,
	}
	if d.RateDiscount != nil {
		rate, err := fromDecimal128(*d.RateDiscount)
		if err != nil {
			return customer.Customer{}, err
		}
		c.RateDiscount = &rate
	}
	return c, nil
}

// CustomerRepository implements customer.Repository on the customers collection.
type CustomerRepository struct {
	coll *mongo.Collection
}

// NewCustomerRepository returns a CustomerRepository using db.
func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(customersCollection)}
}

// Create inserts c and assigns its ID. The version starts at 1.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	c.Version = 1
	fitCustomer(c)
	doc, err := newCustomerDoc(c)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

// List returns all customers in insertion order.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	return r.find(ctx, bson.D{})
}

// GetByID returns customer.ErrNotFound for absent or malformed ids.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, customer.ErrNotFound
	}

	var doc customerDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer %q: %w", id, err)
	}

	c, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDs returns the customers that exist among ids. Malformed ids are skipped.
func (r *CustomerRepository) GetByIDs(ctx context.Context, ids []string) ([]customer.Customer, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
}

// Update sets the provided fields and bumps the version.
func (r *CustomerRepository) Update(ctx context.Context, id string, patch customer.Patch) (*customer.Customer, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, customer.ErrNotFound
	}

	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.Phone != nil {
		set = append(set, bson.E{Key: "phone", Value: *patch.Phone})
	}
	if patch.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *patch.PasswordHash})
	}

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}}}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}

	var doc customerDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("updating customer %q: %w", id, err)
	}

	c, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save replaces the stored document if its version still equals c.Version.
func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	oid, ok := objectID(c.ID)
	if !ok {
		return customer.ErrNotFound
	}

	fitCustomer(c)
	doc, err := newCustomerDoc(c)
	if err != nil {
		return err
	}
	doc.ID = oid
	doc.Version = c.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.D{
		{Key: "_id", Value: oid},
		{Key: "version", Value: c.Version},
	}, doc)
	if err != nil {
		return fmt.Errorf("saving customer %q: %w", c.ID, err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, oid)
	}

	c.Version = doc.Version
	return nil
}

// missOrConflict tells apart a deleted document from a stale version.
func (r *CustomerRepository) missOrConflict(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("checking customer %q: %w", oid.Hex(), err)
	}
	if n == 0 {
		return customer.ErrNotFound
	}
	return customer.ErrConflict
}

// Delete removes the customer. Absent or malformed ids are not an error.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return fmt.Errorf("deleting customer %q: %w", id, err)
	}
	return nil
}

func (r *CustomerRepository) find(ctx context.Context, filter bson.D) ([]customer.Customer, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding customers: %w", err)
	}

	out := make([]customer.Customer, 0, len(docs))
	for _, d := range docs {
		c, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Ping checks the underlying deployment.
func (r *CustomerRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
