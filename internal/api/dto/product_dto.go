package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ProductRequest payload for create and update.
type ProductRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"required,gte=1"`
	Category    string   `json:"category" validate:"required,oneof=ring necklace earrings"`
	ImagesURL   []string `json:"images_url" validate:"required,min=1"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

// ProductResponse is the catalog projection.
type ProductResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImagesURL   []string  `json:"images_url"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Category:    string(product.Category),
		ImagesURL:   product.ImagesURL,
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// NewProductResponses maps a slice of domain products.
func NewProductResponses(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, NewProductResponse(&products[i]))
	}
	return result
}
