package events

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventUserPasswordChanged EventType = "user_password_changed"
	EventUserUpdated         EventType = "user_updated"
	EventUserDeleted         EventType = "user_deleted"
	EventProductCreated      EventType = "product_created"
	EventProductUpdated      EventType = "product_updated"
	EventProductDeleted      EventType = "product_deleted"
)

// Actor identifies who triggered an event. UserID is empty for anonymous
// actions such as self-registration.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services. Payloads never carry
// password digests.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// UserPasswordChangedPayload payload.
type UserPasswordChangedPayload struct {
	UserID string `json:"user_id"`
}

// UserUpdatedPayload payload.
type UserUpdatedPayload struct {
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}

// ProductChangedPayload payload for create/update/delete.
type ProductChangedPayload struct {
	ProductID string                 `json:"product_id"`
	Title     string                 `json:"title"`
	Category  domain.ProductCategory `json:"category"`
}
