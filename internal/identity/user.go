package identity

import (
	"context"
	"errors"
	"time"

	"github.com/erpcore/authgate/internal/rbac"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a tenant-scoped account used by the token issuance endpoint.
type User struct {
	ID           string
	TenantID     string
	Email        string
	Role         rbac.Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository defines the interface for user storage.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
}
