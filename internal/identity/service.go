package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erpcore/authgate/internal/audit"
	"github.com/erpcore/authgate/internal/rbac"
)

// Service provides identity business logic for the issuance endpoint.
type Service struct {
	repo        Repository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Authenticate verifies the credentials of a tenant-scoped user. Failures
// are indistinguishable to the caller (ErrInvalidCredentials) except for a
// disabled account; the audit trail carries the real cause.
func (s *Service) Authenticate(ctx context.Context, tenantID, email, password, ipAddr string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, tenantID, email)
	if err != nil {
		s.auditLogin(ctx, tenantID, email, ipAddr, "user not found")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.auditLogin(ctx, tenantID, email, ipAddr, "user disabled")
		return nil, ErrUserDisabled
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		s.auditLogin(ctx, tenantID, email, ipAddr, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeLoginSuccess,
		Actor:     user.ID,
		TenantID:  tenantID,
		IPAddress: ipAddr,
		Decision:  "success",
	})

	return user, nil
}

// ProvisionUser creates a new user in a tenant with a hashed password.
func (s *Service) ProvisionUser(ctx context.Context, tenantID, email, password string, role rbac.Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           id.String(),
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *Service) auditLogin(ctx context.Context, tenantID, email, ipAddr, reason string) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeLoginFailed,
		TenantID:  tenantID,
		IPAddress: ipAddr,
		Decision:  "failure",
		Reason:    reason,
		Metadata:  map[string]any{"email": email},
	})
}
