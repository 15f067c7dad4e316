package pricing

import (
	"github.com/shopspring/decimal"
)

// Rule types understood by the engine. Other values are stored by the catalog
// screens but ignored here.
const (
	RuleBasePerUnit    = "Base Price per unit"
	RuleBasePer100     = "Base Price per 100"
	RuleQtyMultiplier  = "Qty Multiplier"
	RuleClientDiscount = "Client Discount"
)

// NoLamination is the request default and, on rules and matrix rows, a wildcard.
const NoLamination = "None"

type Product struct {
	ID        int64            `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Category  string           `db:"category" json:"category"`
	BasePrice *decimal.Decimal `db:"base_price" json:"base_price,omitempty"`
}

// Material.UnitPrice is the price of one production sheet, not of one item.
type Material struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
}

type PrintOption struct {
	Name  string          `db:"name" json:"name"`
	Price decimal.Decimal `db:"price" json:"price"`
}

type Work struct {
	Operation string          `db:"operation" json:"operation"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Unit      string          `db:"unit" json:"unit"`
}

type CalculationRule struct {
	ID          int64           `db:"id" json:"id"`
	RuleType    string          `db:"rule_type" json:"rule_type"`
	ProductID   *int64          `db:"product_id" json:"product_id,omitempty"`
	Lamination  *string         `db:"lamination" json:"lamination,omitempty"`
	MinQuantity *int64          `db:"min_quantity" json:"min_quantity,omitempty"`
	MaxQuantity *int64          `db:"max_quantity" json:"max_quantity,omitempty"`
	Value       decimal.Decimal `db:"value" json:"value"`
	Priority    int             `db:"priority" json:"priority"`
	IsActive    bool            `db:"is_active" json:"is_active"`
}

func (r CalculationRule) isBasePrice() bool {
	return r.RuleType == RuleBasePerUnit || r.RuleType == RuleBasePer100
}

// MatrixEntry prices a block of QuantityFrom units. QuantityTo is inclusive.
type MatrixEntry struct {
	ID           int64           `db:"id" json:"id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	QuantityFrom int64           `db:"quantity_from" json:"quantity_from"`
	QuantityTo   *int64          `db:"quantity_to" json:"quantity_to,omitempty"`
	Price        decimal.Decimal `db:"price" json:"price"`
	PrintType    *string         `db:"print_type" json:"print_type,omitempty"`
	Lamination   *string         `db:"lamination" json:"lamination,omitempty"`
	MaterialID   *int64          `db:"material_id" json:"material_id,omitempty"`
}

// Request is the input of one price calculation. Width and Height are in mm.
type Request struct {
	ProductID  int64    `json:"product_id" validate:"gt=0"`
	Quantity   int64    `json:"quantity" validate:"gt=0"`
	Width      *float64 `json:"width,omitempty" validate:"omitempty,gte=1,lte=10000"`
	Height     *float64 `json:"height,omitempty" validate:"omitempty,gte=1,lte=10000"`
	MaterialID *int64   `json:"material_id,omitempty" validate:"omitempty,gt=0"`
	Lamination string   `json:"lamination,omitempty"`
	PrintType  *string  `json:"print_type,omitempty"`
}

func (r Request) lamination() string {
	if r.Lamination == "" {
		return NoLamination
	}
	return r.Lamination
}

// Tier names which pricing mechanism produced the base unit price.
type Tier string

const (
	TierNone        Tier = ""
	TierMatrix      Tier = "matrix"
	TierRule        Tier = "rule"
	TierBasePrice   Tier = "base_price"
	TierSheetLayout Tier = "sheet_layout"
)

// Result is always well formed. A zero UnitPrice means the request is unpriced.
type Result struct {
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	AppliedRules  []string        `json:"applied_rules"`
	Warnings      []string        `json:"warnings"`
	Tier          Tier            `json:"tier,omitempty"`
	ItemsPerSheet int             `json:"items_per_sheet,omitempty"`
}

// Priced reports whether the result may be committed to an order.
func (r Result) Priced() bool {
	return r.UnitPrice.IsPositive()
}

// Degraded reports whether reference data was missing or partly rejected.
func (r Result) Degraded() bool {
	return len(r.Warnings) > 0
}
