package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SweepLock is a distributed lock guarding background maintenance work
// so that only one replica runs it at a time.
type SweepLock struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Resource  string             `json:"resource" bson:"resource"`
	LockedBy  string             `json:"locked_by" bson:"locked_by"`
	LockedAt  time.Time          `json:"locked_at" bson:"locked_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}
