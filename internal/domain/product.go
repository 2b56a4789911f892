package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductCategory is the closed set of catalog categories.
type ProductCategory string

const (
	CategoryRing     ProductCategory = "ring"
	CategoryNecklace ProductCategory = "necklace"
	CategoryEarrings ProductCategory = "earrings"
)

// ParseProductCategory validates a category string from the API boundary.
func ParseProductCategory(value string) (ProductCategory, error) {
	switch ProductCategory(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryRing:
		return CategoryRing, nil
	case CategoryNecklace:
		return CategoryNecklace, nil
	case CategoryEarrings:
		return CategoryEarrings, nil
	default:
		return "", fmt.Errorf("unknown category %q", value)
	}
}

// Product models a catalog item.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Category    ProductCategory
	ImagesURL   []string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
