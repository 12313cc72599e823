package repositories

import (
	"context"
	"errors"

	"catalog/internal/models"
)

var (
	// ErrNotFound is returned when no product has the requested id.
	ErrNotFound = errors.New("product not found")
	// ErrPersistence wraps every storage failure.
	ErrPersistence = errors.New("persistence error")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(ctx context.Context, id uint) (*models.Product, error)
	FindByName(ctx context.Context, name string) ([]models.Product, error)
	FindByCategory(ctx context.Context, category models.Category) ([]models.Product, error)
	FindByAvailability(ctx context.Context, available bool) ([]models.Product, error)
	All(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	Reset(ctx context.Context) error
}
