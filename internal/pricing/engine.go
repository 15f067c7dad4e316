package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine prices requests against a fresh snapshot of the reference store.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	store  ReferenceStore
	logger *zap.Logger
	opts   Options
}

func NewEngine(store ReferenceStore, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// CalculatePrice never fails: missing data ends up in Result.Warnings and an
// unpriced request yields a zero UnitPrice.
func (e *Engine) CalculatePrice(ctx context.Context, req Request) Result {
	const operation = "pricing.Engine.CalculatePrice"

	if req.Quantity <= 0 {
		return invalidResult(req)
	}

	snap := LoadSnapshot(ctx, e.store, req.ProductID, e.logger)
	res := Calculate(snap, req, e.opts)

	e.logger.Debug("Price calculated",
		zap.String("operation", operation),
		zap.Int64("product_id", req.ProductID),
		zap.Int64("quantity", req.Quantity),
		zap.String("tier", string(res.Tier)),
		zap.String("unit_price", res.UnitPrice.String()),
		zap.String("total_price", res.TotalPrice.String()),
		zap.Int("warnings", len(res.Warnings)))

	if !res.Priced() {
		e.logger.Info("Request left unpriced",
			zap.String("operation", operation),
			zap.Int64("product_id", req.ProductID),
			zap.Int64("quantity", req.Quantity),
			zap.Strings("warnings", res.Warnings))
	}
	return res
}

// Calculate runs the tiers over snap: matrix, base-price rule, product base
// price, sheet layout. The first non-zero price wins, then quantity and client
// adjustments are applied.
func Calculate(snap *Snapshot, req Request, opts Options) Result {
	opts = opts.withDefaults()
	if req.Quantity <= 0 {
		return invalidResult(req)
	}
	if snap == nil {
		snap = NewSnapshot(Raw{}, req.ProductID, nil)
	}

	res := Result{
		AppliedRules: []string{},
		Warnings:     append([]string{}, snap.Warnings...),
	}
	unit := decimal.Zero

	if e := MatchMatrix(snap.Matrix, req, opts.PrintTypePolicy); e != nil {
		unit = MatrixUnitPrice(*e)
		res.Tier = TierMatrix
		res.AppliedRules = append(res.AppliedRules, describeMatrix(*e, unit))
	}

	if unit.IsZero() {
		if r := MatchBaseRule(snap.Rules, req); r != nil {
			unit = RuleUnitPrice(*r)
			res.Tier = TierRule
			res.AppliedRules = append(res.AppliedRules, describeRule(*r, unit))
		}
	}

	if unit.IsZero() {
		if bp := snap.Product.BasePrice; bp != nil && bp.IsPositive() {
			unit = *bp
			res.Tier = TierBasePrice
			res.AppliedRules = append(res.AppliedRules,
				fmt.Sprintf("Product base price: %s/pcs", unit.StringFixed(4)))
		} else if IsDesignService(snap.Product.Name) {
			// Design work is quoted by hand; this marker is the only output.
			res.AppliedRules = append(res.AppliedRules,
				fmt.Sprintf("Design service: %s is priced manually", snap.Product.Name))
		}
	}

	if unit.IsZero() {
		if sheet, ok := sheetLayoutCost(snap, req, opts); ok {
			unit = sheet.unitPrice
			res.ItemsPerSheet = sheet.itemsPerSheet
			res.AppliedRules = append(res.AppliedRules, sheet.trace...)
			if unit.IsPositive() {
				res.Tier = TierSheetLayout
			}
		}
	}

	unit, res.AppliedRules = applyAdjustments(snap.Rules, req, unit, res.AppliedRules)

	res.UnitPrice = unit.Round(4)
	res.TotalPrice = res.UnitPrice.Mul(decimal.NewFromInt(req.Quantity)).Round(2)
	return res
}

// applyAdjustments walks the priority-sorted rules once more and compounds
// every quantity multiplier and client discount that applies.
func applyAdjustments(rules []CalculationRule, req Request, unit decimal.Decimal, trace []string) (decimal.Decimal, []string) {
	for _, r := range rules {
		if !unit.IsPositive() {
			break
		}
		switch r.RuleType {
		case RuleQtyMultiplier:
			if !r.IsActive || !inRange(req.Quantity, r.MinQuantity, nil) {
				continue
			}
			unit = unit.Mul(r.Value)
			minQty := "any"
			if r.MinQuantity != nil {
				minQty = fmt.Sprintf("%d", *r.MinQuantity)
			}
			trace = append(trace, fmt.Sprintf("Rule #%d Qty Multiplier x%s (from %s pcs)", r.ID, r.Value.String(), minQty))
		case RuleClientDiscount:
			if !r.IsActive {
				continue
			}
			unit = unit.Mul(r.Value)
			trace = append(trace, fmt.Sprintf("Rule #%d Client Discount x%s", r.ID, r.Value.String()))
		}
	}
	return unit, trace
}

func invalidResult(req Request) Result {
	return Result{
		UnitPrice:    decimal.Zero,
		TotalPrice:   decimal.Zero,
		AppliedRules: []string{},
		Warnings:     []string{fmt.Errorf("%w: quantity %d must be positive", ErrInvalidRequest, req.Quantity).Error()},
	}
}
