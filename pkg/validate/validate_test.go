package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ProductID int64           `json:"product_id" validate:"gt=0"`
	Policy    string          `env:"POLICY" validate:"oneof=ignored matched"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(order{ProductID: 1, Policy: "ignored", Price: decimal.NewFromInt(2)}))

	err := Struct(order{ProductID: 0, Policy: "always", Price: decimal.NewFromInt(-1)})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"product_id": "gt=0",
		"POLICY":     "oneof=ignored matched",
		"price":      "gte=0",
	}, Fields(err))
	assert.Equal(t, "POLICY: oneof=ignored matched, price: gte=0, product_id: gt=0", Describe(err))
}

func TestFields_NotValidationError(t *testing.T) {
	assert.Nil(t, Fields(errors.New("boom")))
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
