// internal/services/product_store_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftai/craftai-backend/internal/models"
)

type ProductStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store ProductStore
	owner uuid.UUID
}

func (s *ProductStoreTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// The postgres schema uses uuid defaults and text[] columns that
	// sqlite's migrator cannot express, so the table is created by hand.
	require.NoError(s.T(), db.Exec(`CREATE TABLE products (
		id text PRIMARY KEY,
		created_at datetime,
		updated_at datetime,
		created_by text NOT NULL,
		title text NOT NULL,
		price real NOT NULL,
		description text,
		story text,
		category text,
		tags text,
		is_eco_friendly numeric DEFAULT false,
		has_global_shipping numeric DEFAULT false,
		authenticity_badge text,
		image_url text,
		image_path text,
		materials text,
		techniques text,
		colors text,
		style text,
		status text DEFAULT 'draft',
		views integer DEFAULT 0,
		likes integer DEFAULT 0,
		shipping text
	)`).Error)

	s.db = db
	s.store = NewProductStore(db)
	s.owner = uuid.New()
}

func (s *ProductStoreTestSuite) insertProduct(title string, status models.ProductStatus, createdAt time.Time) *models.Product {
	product := &models.Product{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		CreatedBy: s.owner,
		Title:     title,
		Price:     45,
		Category:  "Ceramics & Pottery",
		Tags:      []string{"handmade", "pottery"},
		Status:    status,
	}
	require.NoError(s.T(), s.store.Insert(context.Background(), product))
	return product
}

func (s *ProductStoreTestSuite) TestInsertAndGetRoundTrip() {
	now := time.Now().UTC().Truncate(time.Second)
	created := s.insertProduct("Ceramic Vase", models.ProductStatusDraft, now)

	got, err := s.store.GetByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal("Ceramic Vase", got.Title)
	s.Equal([]string{"handmade", "pottery"}, []string(got.Tags))
	s.Equal(models.ProductStatusDraft, got.Status)
	s.Equal(int64(0), got.Views)
}

func (s *ProductStoreTestSuite) TestGetByIDNotFound() {
	_, err := s.store.GetByID(context.Background(), uuid.New())
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductStoreTestSuite) TestUpdatePartialFields() {
	now := time.Now().UTC()
	created := s.insertProduct("Old Title", models.ProductStatusDraft, now)

	err := s.store.Update(context.Background(), created.ID, map[string]interface{}{
		"title": "New Title",
		"price": 99.5,
	})
	s.Require().NoError(err)

	got, err := s.store.GetByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal("New Title", got.Title)
	s.Equal(99.5, got.Price)
	s.Equal("Ceramics & Pottery", got.Category, "untouched fields survive")
}

func (s *ProductStoreTestSuite) TestUpdateMissingProduct() {
	err := s.store.Update(context.Background(), uuid.New(), map[string]interface{}{"title": "x"})
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductStoreTestSuite) TestDelete() {
	now := time.Now().UTC()
	created := s.insertProduct("Vase", models.ProductStatusDraft, now)

	s.Require().NoError(s.store.Delete(context.Background(), created.ID))

	_, err := s.store.GetByID(context.Background(), created.ID)
	s.ErrorIs(err, ErrProductNotFound)

	s.ErrorIs(s.store.Delete(context.Background(), created.ID), ErrProductNotFound)
}

func (s *ProductStoreTestSuite) TestListByOwnerOrderAndFilter() {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.insertProduct("Oldest", models.ProductStatusDraft, base)
	s.insertProduct("Middle", models.ProductStatusPublished, base.Add(time.Hour))
	s.insertProduct("Newest", models.ProductStatusDraft, base.Add(2*time.Hour))

	other := &models.Product{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: base, UpdatedAt: base},
		CreatedBy: uuid.New(),
		Title:     "Not Mine",
		Price:     10,
		Status:    models.ProductStatusDraft,
	}
	s.Require().NoError(s.store.Insert(context.Background(), other))

	all, err := s.store.ListByOwner(context.Background(), s.owner, "")
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("Newest", all[0].Title)
	s.Equal("Middle", all[1].Title)
	s.Equal("Oldest", all[2].Title)

	drafts, err := s.store.ListByOwner(context.Background(), s.owner, models.ProductStatusDraft)
	s.Require().NoError(err)
	s.Len(drafts, 2)
}

func (s *ProductStoreTestSuite) TestListPublished() {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.insertProduct("Draft", models.ProductStatusDraft, base)
	s.insertProduct("Older Published", models.ProductStatusPublished, base.Add(time.Hour))
	s.insertProduct("Newer Published", models.ProductStatusPublished, base.Add(2*time.Hour))

	products, err := s.store.ListPublished(context.Background(), 0)
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal("Newer Published", products[0].Title)

	limited, err := s.store.ListPublished(context.Background(), 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal("Newer Published", limited[0].Title)
}

func (s *ProductStoreTestSuite) TestIncrementViews() {
	now := time.Now().UTC()
	created := s.insertProduct("Vase", models.ProductStatusPublished, now)

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.IncrementViews(context.Background(), created.ID))
	}

	got, err := s.store.GetByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), got.Views)

	s.ErrorIs(s.store.IncrementViews(context.Background(), uuid.New()), ErrProductNotFound)
}

func TestProductStoreTestSuite(t *testing.T) {
	suite.Run(t, new(ProductStoreTestSuite))
}
