package services

import (
	"context"
	"encoding/json"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"go.uber.org/zap"
)

// EventPublisher sends product change events to a message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductFilter selects a subset of the catalog. Only the first set field is applied,
// in the order Name, Category, Available.
type ProductFilter struct {
	Name      string
	Category  string
	Available *bool
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProduct validates fields and persists a new product.
func (s *ProductService) CreateProduct(ctx context.Context, fields any) (*models.Product, error) {
	product := &models.Product{}
	if err := product.Deserialize(fields); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductCreated, product.ID, product)
	return product, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.Find(ctx, id)
}

// UpdateProduct deserializes fields over the stored product. The ID always comes from the caller.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, fields any) (*models.Product, error) {
	product, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Deserialize(fields); err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductUpdated, product.ID, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID. Missing products are not an error.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(models.EventProductDeleted, id, nil)
	return nil
}

// ListProducts returns the products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	switch {
	case filter.Name != "":
		return s.repo.FindByName(ctx, filter.Name)
	case filter.Category != "":
		category, err := models.ParseCategory(filter.Category)
		if err != nil {
			return nil, err
		}
		return s.repo.FindByCategory(ctx, category)
	case filter.Available != nil:
		return s.repo.FindByAvailability(ctx, *filter.Available)
	default:
		return s.repo.All(ctx)
	}
}

// ResetProducts removes every product.
func (s *ProductService) ResetProducts(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return err
	}
	s.publish(models.EventProductsReset, 0, nil)
	return nil
}

// publish is best effort: the change is already committed.
func (s *ProductService) publish(eventType string, id uint, product *models.Product) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to marshal product event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", eventType),
			zap.Uint("product_id", id),
			zap.Error(err),
		)
	}
}
