package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
)

// ContributionRepository persists contributions and serves the balance
// aggregation report.
type ContributionRepository struct {
	col *mongo.Collection
}

func NewContributionRepository(db *mongo.Database) *ContributionRepository {
	return &ContributionRepository{col: db.Collection(collContributions)}
}

func (r *ContributionRepository) Save(ctx context.Context, c *domain.Contribution) (primitive.ObjectID, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return primitive.NilObjectID, err
	}
	return c.ID, nil
}

func (r *ContributionRepository) FindByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Contribution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var contributions []domain.Contribution
	if err := cur.All(ctx, &contributions); err != nil {
		return nil, err
	}
	return contributions, nil
}

// MemberBalances groups contributions by member and sums the amounts.
func (r *ContributionRepository) MemberBalances(ctx context.Context) ([]domain.MemberBalance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$memberId"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var balances []domain.MemberBalance
	if err := cur.All(ctx, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}
