package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoleRepository checks user role grants
type RoleRepository struct {
	collection *mongo.Collection
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *MongoDB) *RoleRepository {
	return &RoleRepository{
		collection: db.GetCollection(CollectionUserRoles),
	}
}

// HasRole reports whether the user holds the given role
func (r *RoleRepository) HasRole(ctx context.Context, userID primitive.ObjectID, role string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctxTimeout, bson.M{
		"user_id": userID,
		"role":    role,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}

	return count > 0, nil
}
