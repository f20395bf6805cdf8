package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Silvano254/jirani-mwema-backend-sub001/internal/domain"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/core"
	"github.com/Silvano254/jirani-mwema-backend-sub001/pkg/jirani/models"
	"time"
)

// ProxyActionRepository persists and queries proxy action records.
type ProxyActionRepository struct {
	col   *mongo.Collection
	clock core.Clock
}

func NewProxyActionRepository(db *mongo.Database, clock core.Clock) *ProxyActionRepository {
	return &ProxyActionRepository{col: db.Collection(collProxyActions), clock: clock}
}

func (r *ProxyActionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.ProxyAction, error) {
	var a domain.ProxyAction
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: proxy action %s", domain.ErrNotFound, id.Hex())
		}
		return nil, err
	}
	return &a, nil
}

func (r *ProxyActionRepository) Insert(ctx context.Context, a *domain.ProxyAction) (primitive.ObjectID, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, err
	}
	return a.ID, nil
}

// ConditionalSave replaces the document only when the persisted version
// still matches expectedVersion. False with a nil error means the
// compare-and-swap lost; the caller decides whether to retry.
func (r *ProxyActionRepository) ConditionalSave(ctx context.Context, a *domain.ProxyAction, expectedVersion int64) (bool, error) {
	doc := *a
	doc.Version = expectedVersion + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID, "version": expectedVersion}, &doc)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	a.Version = doc.Version
	return true, nil
}

func (r *ProxyActionRepository) FindPendingExpired(ctx context.Context, now time.Time, limit int) ([]domain.ProxyAction, error) {
	filter := bson.M{
		"status":    domain.StatusPending,
		"expiresAt": bson.M{"$lt": now},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "expiresAt", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var actions []domain.ProxyAction
	if err := cur.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *ProxyActionRepository) Search(ctx context.Context, req models.SearchActionsRequest) ([]domain.ProxyAction, error) {
	filter := bson.M{}
	if req.Status != "" {
		filter["status"] = req.Status
	}
	if req.ActionType != "" {
		filter["actionType"] = req.ActionType
	}
	if req.RequestedBy != "" {
		id, err := primitive.ObjectIDFromHex(req.RequestedBy)
		if err != nil {
			return nil, fmt.Errorf("%w: requestedBy is not a valid id", domain.ErrValidation)
		}
		filter["requestedBy"] = id
	}
	if req.IsTemplate != nil {
		filter["isTemplate"] = *req.IsTemplate
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit)).SetSkip(int64(req.Offset))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var actions []domain.ProxyAction
	if err := cur.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

// RecordTemplateUse bumps usageCount and links the spawned action in a
// single update. Runs after the child insert; the engine treats a
// failure here as a logged warning, not a rollback.
func (r *ProxyActionRepository) RecordTemplateUse(ctx context.Context, templateID, childID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": templateID, "isTemplate": true},
		bson.M{
			"$inc":  bson.M{"templateData.usageCount": 1},
			"$push": bson.M{"childActions": childID},
			"$set":  bson.M{"updatedAt": r.clock.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: template %s", domain.ErrNotFound, templateID.Hex())
	}
	return nil
}
