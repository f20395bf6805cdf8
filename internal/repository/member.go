package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
)

// MemberRepository persists group members and their sessions.
type MemberRepository struct {
	col *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{col: db.Collection(collMembers)}
}

func (r *MemberRepository) findOne(ctx context.Context, filter bson.M) (*domain.Member, error) {
	var m domain.Member
	err := r.col.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: member", domain.ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MemberRepository) FindBySessionID(ctx context.Context, sessionID string, now time.Time) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{
		"sessionId":     sessionID,
		"sessionExpiry": bson.M{"$gt": now},
		"enabled":       true,
	})
}

func (r *MemberRepository) FindByApiKey(ctx context.Context, apiKey string) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"apiKey": apiKey, "enabled": true})
}

func (r *MemberRepository) FindAll(ctx context.Context) ([]domain.Member, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []domain.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberRepository) Save(ctx context.Context, m *domain.Member) (primitive.ObjectID, error) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return primitive.NilObjectID, err
	}
	return m.ID, nil
}

func (r *MemberRepository) UpdateSession(ctx context.Context, memberID primitive.ObjectID, sessionID string, expiry time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": memberID},
		bson.M{"$set": bson.M{"sessionId": sessionID, "sessionExpiry": expiry}},
	)
	return err
}
