package storage

import (
	"context"
	"testing"

	"adtime-printshop/internal/pricing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

// newTestStorage starts a throwaway Postgres, applies the embedded migrations
// and returns a storage bound to it.
func newTestStorage(t *testing.T) (*PostgresStorage, *sqlx.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("printshop_test"),
		tcPostgres.WithUsername("printshop"),
		tcPostgres.WithPassword("printshop"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db.DB, zap.NewNop()))

	return NewFromDB(db, zap.NewNop()), db
}

func TestPostgresStorage_ReferenceData(t *testing.T) {
	s, db := newTestStorage(t)
	ctx := context.Background()

	db.MustExecContext(ctx, `
        INSERT INTO products (id, name, category, base_price) VALUES
            (1, 'Business card', 'cards', NULL),
            (2, 'Flyer', 'flyers', 12.5)`)

	// Ids are explicit so ties on priority have a known order.
	db.MustExecContext(ctx, `
        INSERT INTO calculation_rules (id, rule_type, product_id, value, priority, is_active) VALUES
            (10, 'Qty Multiplier',  1,    0.95, 5, TRUE),
            (4,  'Client Discount', NULL, 0.90, 5, TRUE),
            (7,  'Qty Multiplier',  1,    0.80, 9, TRUE),
            (3,  'Client Discount', 2,    0.50, 9, TRUE),
            (5,  'Qty Multiplier',  1,    0.10, 9, FALSE),
            (8,  'Client Discount', NULL, 0.97, 1, TRUE)`)

	db.MustExecContext(ctx, `
        INSERT INTO pricing_matrix (id, product_id, quantity_from, quantity_to, price, lamination) VALUES
            (30, 1, 1000, NULL, 0.10, NULL),
            (12, 1, 100,  999,  0.20, 'Matt'),
            (21, 1, 100,  999,  0.25, NULL),
            (40, 2, 1,    NULL, 1.00, NULL)`)

	t.Run("rules ordered by priority then id", func(t *testing.T) {
		rules, err := s.ListActiveRules(ctx, 1)
		require.NoError(t, err)

		ids := make([]int64, 0, len(rules))
		for _, r := range rules {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []int64{7, 4, 10, 8}, ids)

		assert.Nil(t, rules[1].ProductID, "wildcard rule keeps NULL product")
		require.NotNil(t, rules[0].ProductID)
		assert.Equal(t, int64(1), *rules[0].ProductID)
		assert.True(t, rules[0].Value.Equal(decimal.RequireFromString("0.8")))
	})

	t.Run("matrix ordered by id", func(t *testing.T) {
		entries, err := s.ListMatrixEntries(ctx, 1)
		require.NoError(t, err)

		ids := make([]int64, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		assert.Equal(t, []int64{12, 21, 30}, ids)
		assert.Nil(t, entries[2].QuantityTo)
		require.NotNil(t, entries[0].Lamination)
		assert.Equal(t, "Matt", *entries[0].Lamination)
	})

	t.Run("products", func(t *testing.T) {
		card, err := s.GetProduct(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, card)
		assert.Nil(t, card.BasePrice)

		flyer, err := s.GetProduct(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, flyer.BasePrice)
		assert.True(t, flyer.BasePrice.Equal(decimal.RequireFromString("12.5")))

		missing, err := s.GetProduct(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestPostgresStorage_QuoteRoundTrip(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	width, height := 90.0, 50.0
	printType := "4+4"
	req := pricing.Request{ProductID: 1, Quantity: 300, Width: &width, Height: &height, Lamination: "Matt", PrintType: &printType}
	q := NewQuote(req, pricing.Result{
		UnitPrice:    decimal.RequireFromString("0.5050"),
		TotalPrice:   decimal.RequireFromString("151.50"),
		Tier:         pricing.TierSheetLayout,
		AppliedRules: []string{"Detected size business card: 90x50mm", "Sheet layout: 30 pcs per 320x450mm sheet"},
		Warnings:     []string{},
	}, "tg:42", sampleQuote(t).CreatedAt)

	require.NoError(t, s.SaveQuote(ctx, q))

	got, err := s.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, q.AppliedRules, got.AppliedRules)
	assert.Equal(t, StringList{}, got.Warnings)
	assert.True(t, got.UnitPrice.Equal(q.UnitPrice))
	assert.True(t, got.TotalPrice.Equal(q.TotalPrice))
	require.NotNil(t, got.WidthMM)
	assert.Equal(t, width, *got.WidthMM)
	assert.Nil(t, got.MaterialID)
	require.NotNil(t, got.PrintType)
	assert.Equal(t, printType, *got.PrintType)
	assert.Equal(t, "tg:42", got.CreatedBy)
	assert.True(t, got.CreatedAt.Equal(q.CreatedAt))

	_, err = s.GetQuote(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}
