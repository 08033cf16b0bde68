package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// LoanRepository implements ports.LoanRepository using MongoDB.
type LoanRepository struct {
	coll *mongo.Collection
}

func NewLoanRepository(db *mongo.Database, collection string) *LoanRepository {
	return &LoanRepository{coll: db.Collection(collection)}
}

type loanDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	CustomerID      string               `bson:"customerId"`
	ItemDescription string               `bson:"itemDescription"`
	LoanAmount      primitive.Decimal128 `bson:"loanAmount"`
	IssueDate       time.Time            `bson:"issueDate"`
	DueDate         time.Time            `bson:"dueDate"`
	Frequency       string               `bson:"frequency"`
	InterestPercent primitive.Decimal128 `bson:"interestPercent"`
	GraceDays       int                  `bson:"graceDays"`
	Status          string               `bson:"status"`
	CreatedBy       primitive.ObjectID   `bson:"createdBy"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

// toDomain validates the stored status against the closed enumeration.
func (d *loanDoc) toDomain() (*domain.Loan, error) {
	status, err := domain.ParseLoanStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("loan %s: stored status %q: %w", d.ID.Hex(), d.Status, err)
	}
	amount, err := fromDecimal128(d.LoanAmount)
	if err != nil {
		return nil, fmt.Errorf("loan %s: amount: %w", d.ID.Hex(), err)
	}
	interest, err := fromDecimal128(d.InterestPercent)
	if err != nil {
		return nil, fmt.Errorf("loan %s: interest: %w", d.ID.Hex(), err)
	}

	return &domain.Loan{
		ID:              d.ID.Hex(),
		CustomerID:      d.CustomerID,
		ItemDescription: d.ItemDescription,
		LoanAmount:      amount,
		IssueDate:       utc(d.IssueDate),
		DueDate:         utc(d.DueDate),
		Frequency:       d.Frequency,
		InterestPercent: interest,
		GraceDays:       d.GraceDays,
		Status:          status,
		CreatedBy:       d.CreatedBy.Hex(),
		CreatedAt:       utc(d.CreatedAt),
		UpdatedAt:       utc(d.UpdatedAt),
	}, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, ok := objectID(l.CreatedBy)
	if !ok {
		return "", fmt.Errorf("insert loan: malformed owner id %q", l.CreatedBy)
	}
	amount, err := toDecimal128(l.LoanAmount)
	if err != nil {
		return "", fmt.Errorf("insert loan: amount: %w", err)
	}
	interest, err := toDecimal128(l.InterestPercent)
	if err != nil {
		return "", fmt.Errorf("insert loan: interest: %w", err)
	}

	doc := loanDoc{
		CustomerID:      l.CustomerID,
		ItemDescription: l.ItemDescription,
		LoanAmount:      amount,
		IssueDate:       l.IssueDate,
		DueDate:         l.DueDate,
		Frequency:       l.Frequency,
		InterestPercent: interest,
		GraceDays:       l.GraceDays,
		Status:          string(l.Status),
		CreatedBy:       owner,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert loan: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// UpdateStatus is a single updateOne conditional on both id and owner.
func (r *LoanRepository) UpdateStatus(ctx context.Context, id, ownerID string, status domain.LoanStatus, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, okID := objectID(id)
	owner, okOwner := objectID(ownerID)
	if !okID || !okOwner {
		return 0, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "createdBy": owner},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("update loan status: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *LoanRepository) ListByOwner(ctx context.Context, ownerID string, status *domain.LoanStatus) ([]*domain.Loan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, ok := objectID(ownerID)
	if !ok {
		return []*domain.Loan{}, nil
	}

	filter := bson.M{"createdBy": owner}
	if status != nil {
		filter["status"] = string(*status)
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}

	var docs []loanDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode loans: %w", err)
	}

	loans := make([]*domain.Loan, 0, len(docs))
	for i := range docs {
		l, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, nil
}

// MarkOverdue is one updateMany over every past-due loan that is neither
// completed nor already overdue.
func (r *LoanRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"dueDate": bson.M{"$lt": now},
		"status": bson.M{"$nin": bson.A{
			string(domain.LoanCompleted),
			string(domain.LoanOverdue),
		}},
	}
	update := bson.M{"$set": bson.M{
		"status":    string(domain.LoanOverdue),
		"updatedAt": now,
	}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the owner listing and sweep indexes.
func (r *LoanRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
