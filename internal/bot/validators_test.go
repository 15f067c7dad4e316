package bot

import (
	"errors"
	"testing"
	"time"

	"adtime-printshop/internal/pricing"
	"adtime-printshop/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeNow() time.Time {
	return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		in      string
		w, h    float64
		wantErr bool
	}{
		{in: "90x50", w: 90, h: 50},
		{in: "90 x 50", w: 90, h: 50},
		{in: "210×297", w: 210, h: 297},
		{in: "148х210", w: 148, h: 210},
		{in: "85,5*54", w: 85.5, h: 54},
		{in: "90", wantErr: true},
		{in: "0x50", wantErr: true},
		{in: "ax50", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := ParseDimensions(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	id, err := ParseOptionalID(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), *id)

	id, err = ParseOptionalID("-")
	assert.True(t, errors.Is(err, errSkipped))
	assert.Nil(t, id)

	_, err = ParseOptionalID("-3")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, errSkipped))
}

func TestParseLamination(t *testing.T) {
	assert.Equal(t, pricing.NoLamination, ParseLamination(""))
	assert.Equal(t, pricing.NoLamination, ParseLamination("-"))
	assert.Equal(t, "Gloss", ParseLamination(" Gloss "))
}

func TestFormatQuoteNotification(t *testing.T) {
	w, h := 90.0, 50.0
	q := storage.NewQuote(
		pricing.Request{ProductID: 3, Quantity: 300, Width: &w, Height: &h},
		pricing.Result{
			UnitPrice:  decimal.RequireFromString("0.505"),
			TotalPrice: decimal.RequireFromString("151.5"),
			Tier:       pricing.TierSheetLayout,
		},
		"tg:100", timeNow())

	text := FormatQuoteNotification(q)

	assert.Contains(t, text, "90x50 мм")
	assert.Contains(t, text, "0.5050")
	assert.Contains(t, text, "151.50")
	assert.Contains(t, text, "sheet_layout")
	assert.Contains(t, text, "01.03.2026 10:30")
}
