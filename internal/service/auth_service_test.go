package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// fakeUserRepo is an in-memory UserRepository. CreateAccount is atomic the
// way the real transaction is: when createErr is set nothing is stored, and
// the email uniqueness check holds under concurrent callers.
type fakeUserRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*domain.User
	byID      map[string]*domain.User
	roles     map[string]domain.Role
	createErr error
	nextID    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
		roles:   make(map[string]domain.Role),
	}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) CreateAccount(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.byEmail[user.Email] = &stored
	f.byID[user.ID] = &stored
	f.roles[user.ID] = domain.DefaultRole
	return nil
}

func (f *fakeUserRepo) FindWithRole(_ context.Context, id string) (*domain.User, domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return nil, "", pgx.ErrNoRows
	}
	copied := *user
	return &copied, f.roles[id], nil
}

func newAuthService(repo repository.UserRepository) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		BcryptCost:    4,
	}, repo, nil)
}

func domainErrorCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestSignUpSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	result, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", result.User.Email)
	assert.Equal(t, "A B", result.User.FullName)
	assert.NotEmpty(t, result.User.ID)
	assert.NotEmpty(t, result.Token)
	assert.Empty(t, result.User.Role)

	// the stored hash never matches the plaintext
	stored := repo.byEmail["a@x.com"]
	assert.NotEqual(t, "pw123456", stored.PasswordHash)
}

func TestSignUpValidation(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	cases := []struct {
		email, password, fullName string
	}{
		{"", "pw123456", "A B"},
		{"a@x.com", "", "A B"},
		{"a@x.com", "pw123456", ""},
	}
	for _, tc := range cases {
		_, err := svc.SignUp(context.Background(), tc.email, tc.password, tc.fullName)
		assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), "a@x.com", "other-pw", "C D")
	assert.Equal(t, "DUPLICATE_EMAIL", domainErrorCode(t, err))
}

func TestSignUpDuplicateEmailAtInsert(t *testing.T) {
	// A concurrent signup can pass the pre-check and lose the insert race;
	// the constraint violation must still surface as DUPLICATE_EMAIL.
	repo := newFakeUserRepo()
	repo.createErr = repository.ErrDuplicateEmail
	svc := newAuthService(repo)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	assert.Equal(t, "DUPLICATE_EMAIL", domainErrorCode(t, err))
}

func TestSignUpConcurrentSameEmail(t *testing.T) {
	// Two identical signups racing: exactly one wins, the loser gets
	// DUPLICATE_EMAIL, and one account exists afterwards.
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		require.Equal(t, "DUPLICATE_EMAIL", domainErrorCode(t, err))
		duplicates++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.byEmail, 1)
}

func TestSignUpRollbackLeavesNothing(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("role insert failed")
	svc := newAuthService(repo)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	assert.Equal(t, "INTERNAL_ERROR", domainErrorCode(t, err))

	_, lookupErr := repo.FindByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, lookupErr, pgx.ErrNoRows)
}

func TestSignInSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	result, err := svc.SignIn(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
}

func TestSignInCredentialFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	_, wrongPassword := svc.SignIn(context.Background(), "a@x.com", "not-the-password")
	_, unknownEmail := svc.SignIn(context.Background(), "nobody@x.com", "pw123456")

	assert.Equal(t, "INVALID_CREDENTIALS", domainErrorCode(t, wrongPassword))
	assert.Equal(t, "INVALID_CREDENTIALS", domainErrorCode(t, unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestVerifyReturnsDefaultRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	result, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	// drop the role row: verify still reports reader via the read-time default
	delete(repo.roles, result.User.ID)

	view, err := svc.Verify(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReader, view.Role)
	assert.Equal(t, result.User.ID, view.ID)
	assert.Equal(t, "a@x.com", view.Email)
}

func TestVerifyAdminRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	result, err := svc.SignUp(context.Background(), "admin@x.com", "pw123456", "Admin")
	require.NoError(t, err)
	repo.roles[result.User.ID] = domain.RoleAdmin

	view, err := svc.Verify(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, view.Role)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Verify(context.Background(), "not-a-token")
	assert.Equal(t, "UNAUTHORIZED", domainErrorCode(t, err))

	other := NewAuthService(config.AuthConfig{JWTSecret: "other-secret", TokenTTLHours: 1, BcryptCost: 4}, repo, nil)
	result, err := other.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), result.Token)
	assert.Equal(t, "UNAUTHORIZED", domainErrorCode(t, err))
}

func TestVerifyDeletedUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	result, err := svc.SignUp(context.Background(), "a@x.com", "pw123456", "A B")
	require.NoError(t, err)

	delete(repo.byID, result.User.ID)
	delete(repo.byEmail, "a@x.com")

	_, err = svc.Verify(context.Background(), result.Token)
	assert.Equal(t, "UNAUTHORIZED", domainErrorCode(t, err))
}
