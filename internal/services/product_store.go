// internal/services/product_store.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftai/craftai-backend/internal/models"
)

// ErrProductNotFound is returned by store lookups for unknown IDs.
var ErrProductNotFound = errors.New("product not found")

// ProductStore abstracts product persistence so the catalog service can
// be exercised against a stub in tests.
type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, status models.ProductStatus) ([]models.Product, error)
	ListPublished(ctx context.Context, limit int) ([]models.Product, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type gormProductStore struct {
	db *gorm.DB
}

// NewProductStore wraps db in the ProductStore used by CatalogService.
func NewProductStore(db *gorm.DB) ProductStore {
	return &gormProductStore{db: db}
}

func (s *gormProductStore) Insert(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *gormProductStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *gormProductStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *gormProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *gormProductStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, status models.ProductStatus) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Where("created_by = ?", ownerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var products []models.Product
	if err := query.Order("updated_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *gormProductStore) ListPublished(ctx context.Context, limit int) ([]models.Product, error) {
	query := s.db.WithContext(ctx).
		Where("status = ?", models.ProductStatusPublished).
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// IncrementViews bumps the counter in a single UPDATE so concurrent
// views never lose increments.
func (s *gormProductStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
