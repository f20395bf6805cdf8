package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoanStatus string

const (
	LoanRequested LoanStatus = "requested"
	LoanApproved  LoanStatus = "approved"
	LoanRepaid    LoanStatus = "repaid"
)

type Loan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	MemberID    primitive.ObjectID `bson:"memberId"`
	Principal   float64            `bson:"principal"`
	Purpose     string             `bson:"purpose,omitempty"`
	Status      LoanStatus         `bson:"status"`
	RequestedAt time.Time          `bson:"requestedAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}
