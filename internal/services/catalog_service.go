// internal/services/catalog_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/craftai/craftai-backend/internal/apperrors"
	"github.com/craftai/craftai-backend/internal/cache"
	"github.com/craftai/craftai-backend/internal/models"
)

// DefaultMarketplaceLimit bounds the marketplace listing when the
// caller does not ask for a specific page size.
const DefaultMarketplaceLimit = 50

// CatalogService owns product lifecycle and the listing cache. All
// reads prefer the cache; all writes invalidate the slices they could
// have affected.
type CatalogService struct {
	store ProductStore
	cache *cache.ProductCache
	log   *logrus.Logger
}

func NewCatalogService(store ProductStore, productCache *cache.ProductCache, log *logrus.Logger) *CatalogService {
	return &CatalogService{
		store: store,
		cache: productCache,
		log:   log,
	}
}

type CreateProductInput struct {
	Title             string              `json:"title" validate:"required,min=2,max=255"`
	Price             float64             `json:"price" validate:"required,gt=0"`
	Description       string              `json:"description" validate:"max=5000"`
	Story             string              `json:"story"`
	Category          string              `json:"category" validate:"required,max=100"`
	Tags              []string            `json:"tags" validate:"max=20,dive,max=50"`
	IsEcoFriendly     bool                `json:"is_eco_friendly"`
	HasGlobalShipping bool                `json:"has_global_shipping"`
	AuthenticityBadge string              `json:"authenticity_badge"`
	ImageURL          string              `json:"image_url"`
	ImagePath         string              `json:"image_path"`
	Materials         []string            `json:"materials"`
	Techniques        []string            `json:"techniques"`
	Colors            []string            `json:"colors"`
	Style             string              `json:"style"`
	Status            string              `json:"status" validate:"omitempty,oneof=draft published"`
	Shipping          models.ShippingInfo `json:"shipping"`
}

type UpdateProductInput struct {
	Title             *string              `json:"title" validate:"omitempty,min=2,max=255"`
	Price             *float64             `json:"price" validate:"omitempty,gt=0"`
	Description       *string              `json:"description" validate:"omitempty,max=5000"`
	Story             *string              `json:"story"`
	Category          *string              `json:"category" validate:"omitempty,max=100"`
	Tags              []string             `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsEcoFriendly     *bool                `json:"is_eco_friendly"`
	HasGlobalShipping *bool                `json:"has_global_shipping"`
	AuthenticityBadge *string              `json:"authenticity_badge"`
	ImageURL          *string              `json:"image_url"`
	ImagePath         *string              `json:"image_path"`
	Materials         []string             `json:"materials"`
	Techniques        []string             `json:"techniques"`
	Colors            []string             `json:"colors"`
	Style             *string              `json:"style"`
	Shipping          *models.ShippingInfo `json:"shipping"`
}

// CreateProduct inserts a new listing for ownerID, as a draft unless the
// input asks to publish directly. Counters start at zero regardless of
// input and tags are normalized before storage.
func (s *CatalogService) CreateProduct(ctx context.Context, ownerID uuid.UUID, input *CreateProductInput) (*models.Product, error) {
	status := models.ProductStatusDraft
	if input.Status != "" {
		status = models.ProductStatus(input.Status)
	}

	product := &models.Product{
		CreatedBy:         ownerID,
		Title:             input.Title,
		Price:             input.Price,
		Description:       input.Description,
		Story:             input.Story,
		Category:          input.Category,
		Tags:              models.NormalizeTags(input.Tags),
		IsEcoFriendly:     input.IsEcoFriendly,
		HasGlobalShipping: input.HasGlobalShipping,
		AuthenticityBadge: input.AuthenticityBadge,
		ImageURL:          input.ImageURL,
		ImagePath:         input.ImagePath,
		Materials:         input.Materials,
		Techniques:        input.Techniques,
		Colors:            input.Colors,
		Style:             input.Style,
		Status:            status,
		Views:             0,
		Likes:             0,
		Shipping:          input.Shipping,
	}

	if err := s.store.Insert(ctx, product); err != nil {
		s.log.WithError(err).Error("Failed to insert product")
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to save product", err)
	}

	// A direct create-as-published changes the marketplace listing too,
	// so the whole cache goes before the owner prepend.
	if product.Status == models.ProductStatusPublished {
		s.cache.InvalidateAll()
	}
	s.cache.PrependForOwner(ownerID, *product)

	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"owner_id":   ownerID,
	}).Info("Product created")

	return product, nil
}

// GetProduct fetches a single listing by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == ErrProductNotFound {
			return nil, apperrors.NotFound("Product")
		}
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load product", err)
	}
	return product, nil
}

// UpdateProduct applies a partial update to a listing owned by ownerID.
// The owner's cached listings are always invalidated, even for no-op
// updates, since the stored record changed its updated_at ordering.
func (s *CatalogService) UpdateProduct(ctx context.Context, ownerID, id uuid.UUID, input *UpdateProductInput) (*models.Product, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == ErrProductNotFound {
			return nil, apperrors.NotFound("Product")
		}
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load product", err)
	}
	if existing.CreatedBy != ownerID {
		return nil, apperrors.New(apperrors.CodeForbidden, "You do not own this product")
	}

	fields := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Story != nil {
		fields["story"] = *input.Story
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Tags != nil {
		fields["tags"] = pq.StringArray(models.NormalizeTags(input.Tags))
	}
	if input.IsEcoFriendly != nil {
		fields["is_eco_friendly"] = *input.IsEcoFriendly
	}
	if input.HasGlobalShipping != nil {
		fields["has_global_shipping"] = *input.HasGlobalShipping
	}
	if input.AuthenticityBadge != nil {
		fields["authenticity_badge"] = *input.AuthenticityBadge
	}
	if input.ImageURL != nil {
		fields["image_url"] = *input.ImageURL
	}
	if input.ImagePath != nil {
		fields["image_path"] = *input.ImagePath
	}
	if input.Materials != nil {
		fields["materials"] = pq.StringArray(input.Materials)
	}
	if input.Techniques != nil {
		fields["techniques"] = pq.StringArray(input.Techniques)
	}
	if input.Colors != nil {
		fields["colors"] = pq.StringArray(input.Colors)
	}
	if input.Style != nil {
		fields["style"] = *input.Style
	}
	if input.Shipping != nil {
		fields["shipping"] = *input.Shipping
	}

	if err := s.store.Update(ctx, id, fields); err != nil {
		s.log.WithError(err).WithField("product_id", id).Error("Failed to update product")
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to update product", err)
	}

	s.cache.InvalidateOwner(ownerID)

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load product", err)
	}
	return updated, nil
}

// GetUserProducts lists an owner's products, newest update first,
// optionally filtered by status. Served from cache when fresh unless
// forceRefresh is set. When the store is unreachable an expired
// snapshot is still better than nothing, so it falls back to stale
// cache before failing.
func (s *CatalogService) GetUserProducts(ctx context.Context, ownerID uuid.UUID, status models.ProductStatus, forceRefresh bool) ([]models.Product, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("Invalid product status")
	}

	key := cache.OwnerKey(ownerID, status)
	if !forceRefresh {
		if products, ok := s.cache.Get(key); ok {
			return products, nil
		}
	}

	products, err := s.store.ListByOwner(ctx, ownerID, status)
	if err != nil {
		s.log.WithError(err).WithField("owner_id", ownerID).Error("Failed to list products, trying stale cache")
		if stale, ok := s.cache.GetStale(key); ok {
			return stale, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load products", err)
	}

	s.cache.Set(key, products)
	return products, nil
}

// GetPublishedProducts lists the marketplace, newest first.
func (s *CatalogService) GetPublishedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultMarketplaceLimit
	}

	if products, ok := s.cache.Get(cache.MarketplaceKey); ok {
		if len(products) > limit {
			products = products[:limit]
		}
		return products, nil
	}

	products, err := s.store.ListPublished(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load marketplace", err)
	}

	s.cache.Set(cache.MarketplaceKey, products)
	return products, nil
}

// SearchProducts filters the published listing by free-text term and
// category. The category narrows server-side; the term matches across
// title, description, category, tags and materials.
func (s *CatalogService) SearchProducts(ctx context.Context, term, category string, limit int) ([]models.Product, error) {
	products, err := s.GetPublishedProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.Product, 0, len(products))
	for i := range products {
		if category != "" && products[i].Category != category {
			continue
		}
		if !products[i].MatchesSearch(term) {
			continue
		}
		results = append(results, products[i])
	}
	return results, nil
}

// IncrementViews records one view of a published listing. Failures are
// logged and swallowed: a lost view count never breaks a page load.
func (s *CatalogService) IncrementViews(ctx context.Context, id uuid.UUID) {
	if err := s.store.IncrementViews(ctx, id); err != nil && err != ErrProductNotFound {
		s.log.WithError(err).WithField("product_id", id).Warn("Failed to increment views")
	}
}

// PublishProduct moves a draft or archived listing to published. The
// whole cache is cleared since the marketplace listing changes too.
func (s *CatalogService) PublishProduct(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error) {
	return s.setStatus(ctx, ownerID, id, models.ProductStatusPublished)
}

// ArchiveProduct hides a listing from the marketplace without deleting it.
func (s *CatalogService) ArchiveProduct(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error) {
	return s.setStatus(ctx, ownerID, id, models.ProductStatusArchived)
}

func (s *CatalogService) setStatus(ctx context.Context, ownerID, id uuid.UUID, status models.ProductStatus) (*models.Product, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == ErrProductNotFound {
			return nil, apperrors.NotFound("Product")
		}
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load product", err)
	}
	if existing.CreatedBy != ownerID {
		return nil, apperrors.New(apperrors.CodeForbidden, "You do not own this product")
	}

	fields := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if err := s.store.Update(ctx, id, fields); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "Unable to update product", err)
	}

	s.cache.InvalidateAll()

	s.log.WithFields(logrus.Fields{
		"product_id": id,
		"status":     status,
	}).Info("Product status changed")

	existing.Status = status
	return existing, nil
}

// DeleteProduct permanently removes a listing owned by ownerID.
func (s *CatalogService) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == ErrProductNotFound {
			return apperrors.NotFound("Product")
		}
		return apperrors.Wrap(apperrors.CodeUnavailable, "Unable to load product", err)
	}
	if existing.CreatedBy != ownerID {
		return apperrors.New(apperrors.CodeForbidden, "You do not own this product")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("product_id", id).Error("Failed to delete product")
		return apperrors.Wrap(apperrors.CodeUnavailable, "Unable to delete product", err)
	}

	s.cache.InvalidateAll()

	s.log.WithFields(logrus.Fields{
		"product_id": id,
		"owner_id":   ownerID,
	}).Info("Product deleted")

	return nil
}
