package pricing

import (
	"context"
	"testing"
	"time"

	pkgdb "github.com/get2salam/price-matrix-demo/pkg/db"
	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	pkgpagination "github.com/get2salam/price-matrix-demo/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:pricing_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	matrices := `
CREATE TABLE IF NOT EXISTS tier_matrices (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	tiers := `
CREATE TABLE IF NOT EXISTS pricing_tiers (
  id TEXT PRIMARY KEY,
  matrix_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  min_cost NUMERIC NOT NULL,
  max_cost NUMERIC,
  multiplier NUMERIC NOT NULL,
  gross_profit_pct NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(matrices).Error)
	require.NoError(t, db.Exec(tiers).Error)
	return db
}

func newMatrixRow(t *testing.T, db *gorm.DB, name string, created time.Time) *models.TierMatrix {
	t.Helper()

	max := decimal.NewFromFloat(10)
	row := &models.TierMatrix{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: created,
		UpdatedAt: created,
	}
	row.Tiers = []models.PricingTier{
		{
			ID:             uuid.New(),
			MatrixID:       row.ID,
			Position:       2,
			MinCost:        decimal.NewFromFloat(10),
			Multiplier:     decimal.NewFromFloat(2.0),
			GrossProfitPct: decimal.NewFromFloat(50),
		},
		{
			ID:             uuid.New(),
			MatrixID:       row.ID,
			Position:       1,
			MinCost:        decimal.NewFromFloat(0),
			MaxCost:        &max,
			Multiplier:     decimal.NewFromFloat(3.0),
			GrossProfitPct: decimal.NewFromFloat(66.67),
		},
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepoCreateAndFindOrdersTiers(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := newMatrixRow(t, db, "Counter Book", time.Now().UTC())

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Counter Book", found.Name)
	require.Len(t, found.Tiers, 2)
	assert.Equal(t, 1, found.Tiers[0].Position)
	assert.Equal(t, 2, found.Tiers[1].Position)
	assert.True(t, found.Tiers[0].Multiplier.Equal(decimal.NewFromFloat(3.0)))
	require.NotNil(t, found.Tiers[0].MaxCost)
	assert.True(t, found.Tiers[0].MaxCost.Equal(decimal.NewFromFloat(10)))
	assert.Nil(t, found.Tiers[1].MaxCost)
}

func TestRepoFindMissingMatrix(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoReplaceTiers(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := newMatrixRow(t, db, "Replace Me", time.Now().UTC())

	fresh := []models.PricingTier{
		{
			ID:             uuid.New(),
			MatrixID:       row.ID,
			Position:       1,
			MinCost:        decimal.NewFromFloat(0),
			Multiplier:     decimal.NewFromFloat(4.0),
			GrossProfitPct: decimal.NewFromFloat(75),
		},
		{
			ID:             uuid.New(),
			MatrixID:       row.ID,
			Position:       2,
			MinCost:        decimal.NewFromFloat(25),
			Multiplier:     decimal.NewFromFloat(2.5),
			GrossProfitPct: decimal.NewFromFloat(60),
		},
		{
			ID:             uuid.New(),
			MatrixID:       row.ID,
			Position:       3,
			MinCost:        decimal.NewFromFloat(100),
			Multiplier:     decimal.NewFromFloat(1.82),
			GrossProfitPct: decimal.NewFromFloat(45.05),
		},
	}
	require.NoError(t, repo.ReplaceTiers(ctx, row.ID, fresh))

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, found.Tiers, 3)
	assert.True(t, found.Tiers[0].Multiplier.Equal(decimal.NewFromFloat(4.0)))

	var count int64
	require.NoError(t, db.Model(&models.PricingTier{}).Where("matrix_id = ?", row.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestRepoCreateDuplicateName(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newMatrixRow(t, db, "Counter Book", time.Now().UTC())

	dup := &models.TierMatrix{ID: uuid.New(), Name: "Counter Book"}
	_, err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, "tier_matrices"), "got: %v", err)
}

func TestRepoUpdateName(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := newMatrixRow(t, db, "Old Name", time.Now().UTC())
	row.Name = "New Name"
	require.NoError(t, repo.Update(ctx, row))

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.Name)
}

func TestRepoDelete(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := newMatrixRow(t, db, "Doomed", time.Now().UTC())
	require.NoError(t, repo.Delete(ctx, row.ID))

	_, err := repo.FindByID(ctx, row.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoListNewestFirstWithCursor(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	oldest := newMatrixRow(t, db, "Oldest", base)
	middle := newMatrixRow(t, db, "Middle", base.Add(10*time.Minute))
	newest := newMatrixRow(t, db, "Newest", base.Add(20*time.Minute))

	page, err := repo.List(ctx, listQuery{limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)
	require.Len(t, page[0].Tiers, 2)

	cursor := &pkgpagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	rest, err := repo.List(ctx, listQuery{limit: 2, cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, oldest.ID, rest[0].ID)
}
