package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
)

// LoanRepository persists loan records.
type LoanRepository struct {
	col *mongo.Collection
}

func NewLoanRepository(db *mongo.Database) *LoanRepository {
	return &LoanRepository{col: db.Collection(collLoans)}
}

func (r *LoanRepository) Save(ctx context.Context, l *domain.Loan) (primitive.ObjectID, error) {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, l); err != nil {
		return primitive.NilObjectID, err
	}
	return l.ID, nil
}

func (r *LoanRepository) FindByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Loan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requestedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var loans []domain.Loan
	if err := cur.All(ctx, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.LoanStatus, now time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: loan %s", domain.ErrNotFound, id.Hex())
	}
	return nil
}
