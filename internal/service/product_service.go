package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

var (
	// ErrProductNotFound is returned when a catalog lookup misses.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductTitleTaken is returned when another product already holds the
	// requested title.
	ErrProductTitleTaken = errors.New("product title already in use")
)

// ProductService implements catalog CRUD.
type ProductService struct {
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository, dispatcher events.Dispatcher) *ProductService {
	return &ProductService{products: products, dispatcher: dispatcher}
}

// List returns the full catalog.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// Get fetches a single product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListByCategory returns products in one category sorted by title.
func (s *ProductService) ListByCategory(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error) {
	return s.products.ListByCategory(ctx, category)
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, actor events.Actor, product *domain.Product) error {
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return ErrProductTitleTaken
		}
		return err
	}
	s.publish(ctx, events.EventProductCreated, actor, product)
	return nil
}

// Update replaces all mutable fields of a product.
func (s *ProductService) Update(ctx context.Context, actor events.Actor, product *domain.Product) error {
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return ErrProductTitleTaken
		}
		return err
	}
	s.publish(ctx, events.EventProductUpdated, actor, product)
	return nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, actor events.Actor, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	s.publish(ctx, events.EventProductDeleted, actor, events.ProductChangedPayload{ProductID: id})
	return nil
}

func (s *ProductService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, product interface{}) {
	if s.dispatcher == nil {
		return
	}
	payload := product
	if p, ok := product.(*domain.Product); ok {
		payload = events.ProductChangedPayload{ProductID: p.ID, Title: p.Title, Category: p.Category}
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
