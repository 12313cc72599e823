package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	requireJSON := middleware.RequireContentType(fiber.MIMEApplicationJSON)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", requireJSON, h.HandleCreateProduct)
	productRoutes.Get("/:id<int>", h.HandleGetProduct)
	productRoutes.Put("/:id<int>", requireJSON, h.HandleUpdateProduct)
	productRoutes.Delete("/:id<int>", h.HandleDeleteProduct)
}

// RegisterAdminRoutes registers the destructive routes behind guard.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router, guard fiber.Handler) {
	router.Delete("/products/reset", guard, h.HandleResetProducts)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	log := requestLogger(h.logger, c)
	log.Info("Request to create a new product")

	fields, err := parseFields(c)
	if err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), fields)
	if err != nil {
		return h.errorResponse(err)
	}

	c.Location(fmt.Sprintf("%s%s/%d", c.BaseURL(), strings.TrimSuffix(c.Path(), "/"), product.ID))
	log.Info("Product created", zap.Uint("id", product.ID))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	log := requestLogger(h.logger, c)
	id, err := productID(c)
	if err != nil {
		return err
	}
	log.Info("Request for product", zap.Uint("id", id))

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return h.errorResponse(err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct replaces the fields of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	log := requestLogger(h.logger, c)
	id, err := productID(c)
	if err != nil {
		return err
	}
	log.Info("Request to update product", zap.Uint("id", id))

	fields, err := parseFields(c)
	if err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, fields)
	if err != nil {
		return h.errorResponse(err)
	}

	log.Info("Product updated", zap.Uint("id", id))
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product. Deleting a missing product still answers 204.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	log := requestLogger(h.logger, c)
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil {
		log.Warn("Product not found for deletion", zap.String("id", c.Params("id")))
		return c.SendStatus(fiber.StatusNoContent)
	}
	log.Info("Request to delete product", zap.Uint64("id", id))

	if err := h.service.DeleteProduct(c.UserContext(), uint(id)); err != nil {
		return h.errorResponse(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListProducts lists products. Only the first present filter of name, category
// and available is applied.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	log := requestLogger(h.logger, c)

	filter := services.ProductFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	}
	if c.Context().QueryArgs().Has("available") {
		available := parseAvailable(c.Query("available"))
		filter.Available = &available
	}

	products, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return h.errorResponse(err)
	}
	if products == nil {
		products = []models.Product{}
	}

	log.Info("Returning products", zap.Int("count", len(products)))
	return c.JSON(products)
}

// HandleResetProducts removes every product.
func (h *ProductHandler) HandleResetProducts(c *fiber.Ctx) error {
	requestLogger(h.logger, c).Warn("Request to reset all products", zap.Any("admin", c.Locals("admin")))
	if err := h.service.ResetProducts(c.UserContext()); err != nil {
		return h.errorResponse(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// errorResponse translates service errors into HTTP errors. Anything unrecognised,
// persistence failures included, is left for the ErrorHandler to turn into a 500.
func (h *ProductHandler) errorResponse(err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, validationErr.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}

// productID parses the :id path parameter. Ids that cannot exist are reported as not found.
func productID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Product with id '%s' not found", raw))
	}
	return uint(id), nil
}

// parseFields decodes the JSON request body into a field mapping.
func parseFields(c *fiber.Ctx) (any, error) {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid JSON data")
	}
	fields, err := models.DecodeFields(body)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid JSON data")
	}
	if m, ok := fields.(map[string]any); ok && len(m) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid JSON data")
	}
	return fields, nil
}

func parseAvailable(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
