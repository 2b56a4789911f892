package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// ProductsHandler exposes the catalog. Reads are public, writes admin-only.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: productService}
}

// List handles GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"products": dto.NewProductResponses(products)})
}

// Get handles GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(dto.NewProductResponse(product))
}

// ListByCategory handles GET /api/products/category/:category. An empty
// category is a 404, matching the catalog browsing contract.
func (h *ProductsHandler) ListByCategory(c *fiber.Ctx) error {
	category, err := domain.ParseProductCategory(c.Params("category"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	products, err := h.products.ListByCategory(c.UserContext(), category)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(products) == 0 {
		return apperrors.NewNotFound("products in category", nil)
	}
	return c.JSON(fiber.Map{"products": dto.NewProductResponses(products)})
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	product, err := h.parseProduct(c)
	if err != nil {
		return err
	}

	if err := h.products.Create(c.UserContext(), actorFromContext(c), product); err != nil {
		if errors.Is(err, service.ErrProductTitleTaken) {
			return apperrors.NewAlreadyExists("product title already in use", nil)
		}
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProductResponse(product))
}

// Update handles PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	product, err := h.parseProduct(c)
	if err != nil {
		return err
	}
	product.ID = c.Params("id")

	if err := h.products.Update(c.UserContext(), actorFromContext(c), product); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return apperrors.NewNotFound("product", nil)
		}
		if errors.Is(err, service.ErrProductTitleTaken) {
			return apperrors.NewAlreadyExists("product title already in use", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Delete handles DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), actorFromContext(c), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *ProductsHandler) parseProduct(c *fiber.Ctx) (*domain.Product, error) {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	category, err := domain.ParseProductCategory(req.Category)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	return &domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    category,
		ImagesURL:   req.ImagesURL,
		Stock:       req.Stock,
	}, nil
}
