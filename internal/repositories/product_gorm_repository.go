package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Find retrieves a single product by its ID.
func (r *GORMProductRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get product by ID %d: %w", ErrPersistence, id, err)
	}
	return &product, nil
}

// FindByName returns every product with exactly this name.
func (r *GORMProductRepository) FindByName(ctx context.Context, name string) ([]models.Product, error) {
	return r.findWhere(ctx, "name = ?", name)
}

// FindByCategory returns every product in the category.
func (r *GORMProductRepository) FindByCategory(ctx context.Context, category models.Category) ([]models.Product, error) {
	return r.findWhere(ctx, "category = ?", category)
}

// FindByAvailability returns every product with the given availability.
func (r *GORMProductRepository) FindByAvailability(ctx context.Context, available bool) ([]models.Product, error) {
	return r.findWhere(ctx, "available = ?", available)
}

// All retrieves all products from the database.
func (r *GORMProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to get all products: %w", ErrPersistence, err)
	}
	return products, nil
}

func (r *GORMProductRepository) findWhere(ctx context.Context, query string, arg any) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Where(query, arg).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to query products (%s): %w", ErrPersistence, query, err)
	}
	return products, nil
}

// Create inserts a new product; the database assigns its ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = 0
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("%w: failed to create product: %w", ErrPersistence, err)
	}
	return nil
}

// Update writes every field of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("%w: update called with empty ID", ErrPersistence)
	}
	// Updates with a map writes zero values too (available=false, empty description).
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"available":   product.Available,
		"category":    product.Category,
	})
	if res.Error != nil {
		return fmt.Errorf("%w: failed to update product: %w", ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product with ID %d not found for update: %w", ErrPersistence, product.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a product by its ID. Deleting a missing product is not an error.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return fmt.Errorf("%w: failed to delete product: %w", ErrPersistence, err)
	}
	return nil
}

// Reset removes every product.
func (r *GORMProductRepository) Reset(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error
	if err != nil {
		return fmt.Errorf("%w: failed to reset products: %w", ErrPersistence, err)
	}
	return nil
}
