package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names known to the service
const RoleAdmin = "admin"

// User is the resolved caller identity
type User struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email string             `json:"email" bson:"email"`
}

// APIToken maps a bearer credential to a user
type APIToken struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Token     string             `json:"-" bson:"token"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	ExpiresAt time.Time          `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// RoleRecord grants one role to one user
type RoleRecord struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`
	Role   string             `json:"role" bson:"role"`
}
