package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrReferenceDataUnavailable = errors.New("reference data unavailable")
	ErrMalformedMatrixEntry     = errors.New("malformed matrix entry")
	ErrInvalidRequest           = errors.New("invalid pricing request")
)

// PrintTypePolicy controls how matrix rows are filtered by print type.
type PrintTypePolicy string

const (
	// PrintTypeIgnored accepts every matrix row regardless of its print type.
	// This is how the order screens have always priced.
	PrintTypeIgnored PrintTypePolicy = "ignored"
	// PrintTypeMatched applies the same wildcard-or-equal test as lamination.
	PrintTypeMatched PrintTypePolicy = "matched"
)

// Options holds the engine constants. Zero values are replaced by defaults.
type Options struct {
	PrintTypePolicy PrintTypePolicy

	// SheetPrintType is the PrintOptions key used by the sheet layout tier.
	SheetPrintType string

	// SheetPrintTypeFromRequest uses the request print type when one is given.
	SheetPrintTypeFromRequest bool

	SheetWidth        float64
	SheetHeight       float64
	DefaultPrintPrice decimal.Decimal
	DefaultPaperPrice decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		PrintTypePolicy:   PrintTypeIgnored,
		SheetPrintType:    "4+0",
		SheetWidth:        320,
		SheetHeight:       450,
		DefaultPrintPrice: decimal.NewFromInt(15),
		DefaultPaperPrice: decimal.RequireFromString("0.15"),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PrintTypePolicy == "" {
		o.PrintTypePolicy = d.PrintTypePolicy
	}
	if o.SheetPrintType == "" {
		o.SheetPrintType = d.SheetPrintType
	}
	if o.SheetWidth <= 0 {
		o.SheetWidth = d.SheetWidth
	}
	if o.SheetHeight <= 0 {
		o.SheetHeight = d.SheetHeight
	}
	if !o.DefaultPrintPrice.IsPositive() {
		o.DefaultPrintPrice = d.DefaultPrintPrice
	}
	if !o.DefaultPaperPrice.IsPositive() {
		o.DefaultPaperPrice = d.DefaultPaperPrice
	}
	return o
}
