package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adtime-printshop/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products/3", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":3,"name":"Vizitinės kortelės","category":"cards","base_price":"0.50"}`))
	})
	mux.HandleFunc("/api/materials", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Coated 350g","unit_price":"0.60"}]`))
	})
	mux.HandleFunc("/api/print-options", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/works", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"operation":"Matt","price":"3","unit":"sheet"}]`))
	})
	mux.HandleFunc("/api/calculation-rules", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("product_id"))
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		_, _ = w.Write([]byte(`[{"id":1,"rule_type":"Client Discount","value":"0.9","priority":1,"is_active":true}]`))
	})
	mux.HandleFunc("/api/pricing-matrix", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":5,"product_id":3,"quantity_from":100,"quantity_to":null,"price":"20"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ReferenceData(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewClient(srv.URL, "secret", time.Second, zap.NewNop())
	ctx := context.Background()

	product, err := c.GetProduct(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Vizitinės kortelės", product.Name)
	require.NotNil(t, product.BasePrice)
	assert.Equal(t, "0.5", product.BasePrice.String())

	missing, err := c.GetProduct(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	materials, err := c.ListMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "0.6", materials[0].UnitPrice.String())

	_, err = c.ListPrintOptions(ctx)
	assert.Error(t, err)

	rules, err := c.ListActiveRules(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, pricing.RuleClientDiscount, rules[0].RuleType)

	entries, err := c.ListMatrixEntries(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].QuantityTo)
}

func TestClient_FeedsEngine(t *testing.T) {
	srv := newCatalogServer(t)
	engine := pricing.NewEngine(NewClient(srv.URL, "secret", time.Second, zap.NewNop()), zap.NewNop(), pricing.Options{})

	res := engine.CalculatePrice(context.Background(), pricing.Request{ProductID: 3, Quantity: 150})

	// Matrix 20/100 = 0.20, then client discount 0.9.
	assert.Equal(t, "0.1800", res.UnitPrice.StringFixed(4))
	assert.Equal(t, "27.00", res.TotalPrice.StringFixed(2))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "print options")
}
