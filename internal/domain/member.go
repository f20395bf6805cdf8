package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Member struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	FullName      string             `bson:"fullName,omitempty"`
	PhoneNumber   string             `bson:"phoneNumber,omitempty"`
	PasswordHash  string             `bson:"passwordHash"`
	ApiKey        string             `bson:"apiKey,omitempty"`
	Enabled       bool               `bson:"enabled"`
	SessionID     string             `bson:"sessionId,omitempty"`
	SessionExpiry *time.Time         `bson:"sessionExpiry,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}
