package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(user), nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	users, _, err := r.Search(context.Background(), repository.UserFilter{Limit: limit, Offset: offset})
	return users, err
}

func (r *stubUserRepo) Search(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	var matched []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(*filter.SearchTerm)
			if !strings.Contains(strings.ToLower(user.Email), term) &&
				!strings.Contains(strings.ToLower(user.DisplayName), term) {
				continue
			}
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })

	total := len(matched)
	offset := filter.Offset
	if offset > total {
		offset = total
	}
	end := total
	if filter.Limit > 0 && offset+filter.Limit < total {
		end = offset + filter.Limit
	}
	return matched[offset:end], total, nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func newTestAuthService(repo repository.UserRepository) *AuthService {
	return NewAuthService(testConfig(), AuthDependencies{
		UserRepo: repo,
		Throttle: auth.NewLoginThrottle(nil, 10, 15),
	})
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "A@X.com", "Alice", "abc123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected default role customer, got %s", user.Role)
	}
	if user.PasswordHash == "abc123" {
		t.Fatalf("password stored in plaintext")
	}
	if err := auth.ComparePassword(user.PasswordHash, "abc123"); err != nil {
		t.Fatalf("stored digest does not verify: %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "a@x.com", "", "abc123", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@x.com", "", "other9", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("second attempt must not change the store, have %d users", len(repo.users))
	}
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "a@x.com", "", "abc123", domain.RoleAdmin); !errors.Is(err, ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "a@x.com", "Alice", "abc123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, exp, err := svc.Login(context.Background(), "a@x.com", "abc123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.IsZero() {
		t.Fatalf("expected expiry")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != user.ID || claims.DisplayName != "Alice" || claims.Role != domain.RoleCustomer {
		t.Fatalf("claims do not match account: %+v", claims)
	}
}

func TestAuthService_Login_DistinctTokensPerLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "a@x.com", "", "abc123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, first, _, err := svc.Login(context.Background(), "a@x.com", "abc123")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, second, _, err := svc.Login(context.Background(), "a@x.com", "abc123")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, err := svc.TokenManager().ParseToken(first); err != nil {
		t.Fatalf("first token invalid: %v", err)
	}
	if _, err := svc.TokenManager().ParseToken(second); err != nil {
		t.Fatalf("second token invalid: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "a@x.com", "", "abc123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, _, err := svc.Login(context.Background(), "a@x.com", "wrong1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	if _, _, _, err := svc.Login(context.Background(), "ghost@x.com", "abc123"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "a@x.com", "", "abc123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "wrong1", "next45"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "abc123", "next45"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, _, _, err := svc.Login(context.Background(), "a@x.com", "abc123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, _, err := svc.Login(context.Background(), "a@x.com", "next45"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

type stubLimiter struct {
	max      int
	failures map[string]int
	resets   int
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{max: max, failures: make(map[string]int)}
}

func (l *stubLimiter) Blocked(_ context.Context, email string) (bool, error) {
	return l.failures[email] >= l.max, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	delete(l.failures, email)
	l.resets++
	return nil
}

func TestAuthService_Login_ThrottledOverLimit(t *testing.T) {
	repo := newStubUserRepo()
	limiter := newStubLimiter(3)
	svc := NewAuthService(testConfig(), AuthDependencies{UserRepo: repo, Throttle: limiter})

	if _, err := svc.Register(context.Background(), "a@x.com", "", "abc123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, _, err := svc.Login(context.Background(), "a@x.com", "wrong1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Over the budget even the correct password is rejected.
	if _, _, _, err := svc.Login(context.Background(), "a@x.com", "abc123"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_SuccessResetsFailures(t *testing.T) {
	repo := newStubUserRepo()
	limiter := newStubLimiter(3)
	svc := NewAuthService(testConfig(), AuthDependencies{UserRepo: repo, Throttle: limiter})

	if _, err := svc.Register(context.Background(), "a@x.com", "", "abc123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, _, err := svc.Login(context.Background(), "a@x.com", "wrong1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if limiter.failures["a@x.com"] != 2 {
		t.Fatalf("expected 2 recorded failures, got %d", limiter.failures["a@x.com"])
	}

	if _, _, _, err := svc.Login(context.Background(), "a@x.com", "abc123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if limiter.resets != 1 || limiter.failures["a@x.com"] != 0 {
		t.Fatalf("successful login must reset the counter: %+v", limiter)
	}
}

func TestAuthService_ChangePassword_UnknownAccount(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	if err := svc.ChangePassword(context.Background(), "missing", "abc123", "next45"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
