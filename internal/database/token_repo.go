package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TokenRepository resolves bearer credentials to user identities
type TokenRepository struct {
	tokens *mongo.Collection
	users  *mongo.Collection
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *MongoDB) *TokenRepository {
	return &TokenRepository{
		tokens: db.GetCollection(CollectionAPITokens),
		users:  db.GetCollection(CollectionUsers),
	}
}

// ResolveToken looks up a bearer token and returns the user it belongs
// to. Unknown and expired tokens both resolve to ErrNotFound.
func (r *TokenRepository) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var apiToken model.APIToken
	err := r.tokens.FindOne(ctxTimeout, bson.M{"token": token}).Decode(&apiToken)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if !apiToken.ExpiresAt.IsZero() && apiToken.ExpiresAt.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("token expired: %w", ErrNotFound)
	}

	var user model.User
	err = r.users.FindOne(ctxTimeout, bson.M{"_id": apiToken.UserID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("token user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up token user: %w", err)
	}

	return &user, nil
}
