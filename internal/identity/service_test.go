package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erpcore/authgate/internal/audit"
	"github.com/erpcore/authgate/internal/rbac"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockRepo) GetByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Log(ctx context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) lastType() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].Type
}

func storedUser(t *testing.T, h *PasswordHasher, password string) *User {
	t.Helper()
	hash, err := h.Hash(password)
	require.NoError(t, err)
	return &User{
		ID:           "user-1",
		TenantID:     "acme",
		Email:        "finance@acme.test",
		Role:         rbac.RoleFinance,
		PasswordHash: hash,
		IsActive:     true,
	}
}

// TestPurpose: Validates successful authentication with email normalization and a login_success audit event.
// Scope: Unit Test
// Security: Authentication is the issuance gate for all tokens
// Expected: Mixed-case padded email resolves; the stored user returns; success is audited.
// Test Case ID: IDS-01
func TestIdentity_Service_Authenticate_Success(t *testing.T) {
	hasher := testHasher()
	repo := new(mockRepo)
	sink := &recordingAudit{}
	svc := NewService(repo, hasher, sink)

	repo.On("GetByEmail", mock.Anything, "acme", "finance@acme.test").
		Return(storedUser(t, hasher, "s3cret-pass"), nil)

	user, err := svc.Authenticate(context.Background(), "acme", "  Finance@Acme.Test ", "s3cret-pass", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, audit.TypeLoginSuccess, sink.lastType())
	repo.AssertExpectations(t)
}

// TestPurpose: Validates that unknown users and wrong passwords are indistinguishable to the caller.
// Scope: Unit Test
// Security: Distinct failures enable account enumeration (CWE-203)
// Expected: Both yield ErrInvalidCredentials; the audit trail carries the real cause.
// Test Case ID: IDS-02
func TestIdentity_Service_Authenticate_Indistinguishable(t *testing.T) {
	hasher := testHasher()
	repo := new(mockRepo)
	sink := &recordingAudit{}
	svc := NewService(repo, hasher, sink)

	repo.On("GetByEmail", mock.Anything, "acme", "ghost@acme.test").
		Return(nil, ErrUserNotFound)
	repo.On("GetByEmail", mock.Anything, "acme", "finance@acme.test").
		Return(storedUser(t, hasher, "s3cret-pass"), nil)

	_, err := svc.Authenticate(context.Background(), "acme", "ghost@acme.test", "whatever", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "acme", "finance@acme.test", "wrong-pass", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, audit.TypeLoginFailed, sink.lastType())
}

// TestPurpose: Validates that a disabled account cannot authenticate even with correct credentials.
// Scope: Unit Test
// Security: Deactivation must take effect at the next login attempt
// Expected: ErrUserDisabled with a login_failed audit event.
// Test Case ID: IDS-03
func TestIdentity_Service_Authenticate_Disabled(t *testing.T) {
	hasher := testHasher()
	repo := new(mockRepo)
	sink := &recordingAudit{}
	svc := NewService(repo, hasher, sink)

	disabled := storedUser(t, hasher, "s3cret-pass")
	disabled.IsActive = false
	repo.On("GetByEmail", mock.Anything, "acme", "finance@acme.test").
		Return(disabled, nil)

	_, err := svc.Authenticate(context.Background(), "acme", "finance@acme.test", "s3cret-pass", "10.0.0.1")
	assert.ErrorIs(t, err, ErrUserDisabled)
	assert.Equal(t, audit.TypeLoginFailed, sink.lastType())
}

// TestPurpose: Validates user provisioning: UUIDv7 identifier, hashed password, role validation.
// Scope: Unit Test
// Security: Plaintext passwords must never reach the repository
// Expected: Created user has a v7 UUID and an Argon2id hash; an unknown role is rejected before hashing.
// Test Case ID: IDS-04
func TestIdentity_Service_ProvisionUser(t *testing.T) {
	hasher := testHasher()
	repo := new(mockRepo)
	svc := NewService(repo, hasher, &recordingAudit{})

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
		uid, err := uuid.Parse(u.ID)
		if err != nil || uid.Version() != 7 {
			return false
		}
		ok, err := hasher.Verify("initial-pass", u.PasswordHash)
		return err == nil && ok && u.Email == "new@acme.test" && u.IsActive
	})).Return(nil)

	user, err := svc.ProvisionUser(context.Background(), "acme", " New@Acme.Test ", "initial-pass", rbac.RoleSales)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleSales, user.Role)
	repo.AssertExpectations(t)

	_, err = svc.ProvisionUser(context.Background(), "acme", "x@acme.test", "pw", rbac.Role("superadmin"))
	assert.Error(t, err)
}
