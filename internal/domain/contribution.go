package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Contribution struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	MemberID primitive.ObjectID `bson:"memberId"`
	Amount   float64            `bson:"amount"`
	Month    string             `bson:"month"` // YYYY-MM
	Note     string             `bson:"note,omitempty"`
	RecordedAt time.Time        `bson:"recordedAt"`
}

// MemberBalance is one row of the balances aggregation report.
type MemberBalance struct {
	MemberID primitive.ObjectID `bson:"_id"`
	Total    float64            `bson:"total"`
	Count    int                `bson:"count"`
}
