package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

var customerManagedFields = map[string]struct{}{
	"_id": {}, "phone": {}, "trustScore": {}, "createdBy": {}, "createdAt": {}, "updatedAt": {},
}

// CustomerRepository implements ports.CustomerRepository using MongoDB.
type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database, collection string) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(collection)}
}

type customerDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Phone      string             `bson:"phone"`
	TrustScore int                `bson:"trustScore"`
	CreatedBy  primitive.ObjectID `bson:"createdBy"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
	Profile    map[string]any     `bson:",inline"`
}

func (d *customerDoc) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:         d.ID.Hex(),
		Phone:      d.Phone,
		TrustScore: d.TrustScore,
		CreatedBy:  d.CreatedBy.Hex(),
		Profile:    d.Profile,
		CreatedAt:  utc(d.CreatedAt),
		UpdatedAt:  utc(d.UpdatedAt),
	}
}

// Create inserts a customer. The unique index on phone turns a concurrent
// duplicate into domain.ErrPhoneTaken.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, ok := objectID(c.CreatedBy)
	if !ok {
		return "", fmt.Errorf("insert customer: malformed owner id %q", c.CreatedBy)
	}

	doc := customerDoc{
		Phone:      c.Phone,
		TrustScore: c.TrustScore,
		CreatedBy:  owner,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Profile:    storableFields(c.Profile, customerManagedFields),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrPhoneTaken
		}
		return "", fmt.Errorf("insert customer: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}

	var doc customerDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CustomerRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"phone": phone}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count customers: %w", err)
	}
	return n > 0, nil
}

// Update applies a partial merge with a single conditional updateOne on id and
// owner.
func (r *CustomerRepository) Update(ctx context.Context, id, ownerID string, patch domain.CustomerPatch, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, okID := objectID(id)
	owner, okOwner := objectID(ownerID)
	if !okID || !okOwner {
		return domain.ErrCustomerNotFound
	}

	set := bson.M{"updatedAt": now}
	for k, v := range storableFields(patch.Profile, customerManagedFields) {
		set[k] = v
	}
	if patch.TrustScore != nil {
		set["trustScore"] = *patch.TrustScore
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "createdBy": owner},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, okID := objectID(id)
	owner, okOwner := objectID(ownerID)
	if !okID || !okOwner {
		return domain.ErrCustomerNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "createdBy": owner})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// EnsureIndexes makes phone unique and indexes the owner.
func (r *CustomerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
