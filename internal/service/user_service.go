package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// UserSearchParams captures the admin search query.
type UserSearchParams struct {
	Query    string
	Role     *domain.Role
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

// Pagination describes a page of results.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	Total       int  `json:"total"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// UserService implements admin-only account management.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// List returns accounts newest first.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}

// Search returns a filtered page of accounts plus the pagination envelope.
func (s *UserService) Search(ctx context.Context, params UserSearchParams) ([]domain.User, Pagination, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	filter := repository.UserFilter{
		Role:     params.Role,
		SortBy:   params.SortBy,
		SortDesc: params.SortDesc,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if params.Query != "" {
		filter.SearchTerm = &params.Query
	}

	users, total, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	pagination := Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
	return users, pagination, nil
}

// Get fetches a single account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create lets an administrator provision an account with an explicit role.
// This is the only path that may assign admin.
func (s *UserService) Create(ctx context.Context, actor events.Actor, email, displayName, password string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        domain.NormalizeEmail(email),
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, actor, events.UserRegisteredPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	return user, nil
}

// Update changes email and/or role. A role change does not touch tokens
// already in the wild; they keep the old role until re-login.
func (s *UserService) Update(ctx context.Context, actor events.Actor, id string, email *string, role *domain.Role) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	oldRole := user.Role
	if email != nil {
		user.Email = domain.NormalizeEmail(*email)
	}
	if role != nil {
		user.Role = *role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserUpdated, actor, events.UserUpdatedPayload{
		UserID:  user.ID,
		Email:   user.Email,
		OldRole: oldRole,
		NewRole: user.Role,
	})
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, actor events.Actor, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	s.publish(ctx, events.EventUserDeleted, actor, events.UserDeletedPayload{UserID: id})
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
