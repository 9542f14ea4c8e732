package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kestrel-hq/kestrel/internal/database"
	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubResolver struct {
	user *model.User
	err  error
}

func (s *stubResolver) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	return s.user, s.err
}

type stubRoles struct {
	hasRole bool
	err     error
}

func (s *stubRoles) HasRole(ctx context.Context, userID primitive.ObjectID, role string) (bool, error) {
	return s.hasRole, s.err
}

func TestRequireAdmin(t *testing.T) {
	admin := &model.User{ID: primitive.NewObjectID(), Email: "admin@example.com"}

	t.Run("admin passes", func(t *testing.T) {
		guard := NewGuard(&stubResolver{user: admin}, &stubRoles{hasRole: true})

		user, err := guard.RequireAdmin(context.Background(), "token")
		if err != nil {
			t.Fatalf("RequireAdmin() error = %v", err)
		}
		if user.ID != admin.ID {
			t.Error("returned wrong user")
		}
	})

	t.Run("empty token", func(t *testing.T) {
		guard := NewGuard(&stubResolver{user: admin}, &stubRoles{hasRole: true})

		_, err := guard.RequireAdmin(context.Background(), "")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		guard := NewGuard(&stubResolver{err: database.ErrNotFound}, &stubRoles{hasRole: true})

		_, err := guard.RequireAdmin(context.Background(), "bogus")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("identity store failure propagates", func(t *testing.T) {
		guard := NewGuard(&stubResolver{err: errors.New("timeout")}, &stubRoles{hasRole: true})

		_, err := guard.RequireAdmin(context.Background(), "token")
		if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden) {
			t.Errorf("store failure misclassified: %v", err)
		}
		if err == nil {
			t.Error("error = nil, want failure")
		}
	})

	t.Run("missing role", func(t *testing.T) {
		guard := NewGuard(&stubResolver{user: admin}, &stubRoles{hasRole: false})

		_, err := guard.RequireAdmin(context.Background(), "token")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer abc123", "abc123"},
		{"case insensitive scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
