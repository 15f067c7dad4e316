package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adtime-printshop/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnpriced      = errors.New("quote has no price")
	ErrQuoteNotFound = errors.New("quote not found")
)

// StringList is stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Quote is a priced order line, kept with the trace that produced its price.
type Quote struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	WidthMM      *float64        `db:"width_mm" json:"width_mm,omitempty"`
	HeightMM     *float64        `db:"height_mm" json:"height_mm,omitempty"`
	MaterialID   *int64          `db:"material_id" json:"material_id,omitempty"`
	Lamination   string          `db:"lamination" json:"lamination"`
	PrintType    *string         `db:"print_type" json:"print_type,omitempty"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"total_price"`
	Tier         string          `db:"tier" json:"tier"`
	AppliedRules StringList      `db:"applied_rules" json:"applied_rules"`
	Warnings     StringList      `db:"warnings" json:"warnings"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

func NewQuote(req pricing.Request, res pricing.Result, createdBy string, now time.Time) Quote {
	lamination := req.Lamination
	if lamination == "" {
		lamination = pricing.NoLamination
	}
	return Quote{
		ID:           uuid.New(),
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		WidthMM:      req.Width,
		HeightMM:     req.Height,
		MaterialID:   req.MaterialID,
		Lamination:   lamination,
		PrintType:    req.PrintType,
		UnitPrice:    res.UnitPrice,
		TotalPrice:   res.TotalPrice,
		Tier:         string(res.Tier),
		AppliedRules: StringList(res.AppliedRules),
		Warnings:     StringList(res.Warnings),
		CreatedBy:    createdBy,
		CreatedAt:    now.UTC(),
	}
}

// Priced mirrors pricing.Result.Priced for a stored line.
func (q Quote) Priced() bool {
	return q.UnitPrice.IsPositive()
}

// SaveQuote persists a priced line. Unpriced quotes are refused so that an
// order never carries a zero price.
func (s *PostgresStorage) SaveQuote(ctx context.Context, q Quote) error {
	const operation = "storage.SaveQuote"

	if !q.Priced() {
		return fmt.Errorf("%s: %w", operation, ErrUnpriced)
	}

	const query = `
        INSERT INTO order_lines (
            id, product_id, quantity, width_mm, height_mm, material_id,
            lamination, print_type, unit_price, total_price, tier,
            applied_rules, warnings, created_by, created_at
        ) VALUES (
            :id, :product_id, :quantity, :width_mm, :height_mm, :material_id,
            :lamination, :print_type, :unit_price, :total_price, :tier,
            :applied_rules, :warnings, :created_by, :created_at
        )
    `

	if _, err := s.db.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("%s: failed to save quote: %w", operation, err)
	}
	return nil
}

func (s *PostgresStorage) GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error) {
	const query = `
        SELECT id, product_id, quantity, width_mm, height_mm, material_id,
               lamination, print_type, unit_price, total_price, tier,
               applied_rules, warnings, created_by, created_at
        FROM order_lines
        WHERE id = $1
    `

	var q Quote
	if err := s.db.GetContext(ctx, &q, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}
