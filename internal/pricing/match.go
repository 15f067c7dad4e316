package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MatchesOrWildcard reports whether a rule or matrix value accepts the request
// value. An unset, empty or "None" rule value accepts anything.
func MatchesOrWildcard(requestValue, ruleValue *string) bool {
	if ruleValue == nil || *ruleValue == "" || *ruleValue == NoLamination {
		return true
	}
	return requestValue != nil && *requestValue == *ruleValue
}

func matchesIDOrWildcard(requestID, ruleID *int64) bool {
	if ruleID == nil {
		return true
	}
	return requestID != nil && *requestID == *ruleID
}

func inRange(quantity int64, lo, hi *int64) bool {
	if lo != nil && quantity < *lo {
		return false
	}
	if hi != nil && quantity > *hi {
		return false
	}
	return true
}

// MatchMatrix returns the first entry, in snapshot order, whose quantity block
// and attributes accept the request.
func MatchMatrix(entries []MatrixEntry, req Request, policy PrintTypePolicy) *MatrixEntry {
	lamination := req.lamination()
	for i := range entries {
		e := &entries[i]
		if !inRange(req.Quantity, &e.QuantityFrom, e.QuantityTo) {
			continue
		}
		if !matchesIDOrWildcard(req.MaterialID, e.MaterialID) {
			continue
		}
		if !MatchesOrWildcard(&lamination, e.Lamination) {
			continue
		}
		if policy == PrintTypeMatched && !MatchesOrWildcard(req.PrintType, e.PrintType) {
			continue
		}
		return e
	}
	return nil
}

// MatrixUnitPrice spreads the block price over the block size.
func MatrixUnitPrice(e MatrixEntry) decimal.Decimal {
	if e.QuantityFrom <= 0 {
		return decimal.Zero
	}
	return e.Price.Div(decimal.NewFromInt(e.QuantityFrom))
}

func describeMatrix(e MatrixEntry, unit decimal.Decimal) string {
	block := fmt.Sprintf("%d+", e.QuantityFrom)
	if e.QuantityTo != nil {
		block = fmt.Sprintf("%d-%d", e.QuantityFrom, *e.QuantityTo)
	}
	return fmt.Sprintf("Matrix #%d: %s pcs, %s for %d pcs = %s/pcs",
		e.ID, block, e.Price.StringFixed(2), e.QuantityFrom, unit.StringFixed(4))
}

func ruleAccepts(r CalculationRule, req Request) bool {
	if !r.IsActive {
		return false
	}
	productID := req.ProductID
	if !matchesIDOrWildcard(&productID, r.ProductID) {
		return false
	}
	lamination := req.lamination()
	return MatchesOrWildcard(&lamination, r.Lamination)
}

// MatchBaseRule scans rules already sorted by priority and returns the first
// active base-price rule that accepts the request.
func MatchBaseRule(rules []CalculationRule, req Request) *CalculationRule {
	for i := range rules {
		r := &rules[i]
		if !r.isBasePrice() || !ruleAccepts(*r, req) {
			continue
		}
		if !inRange(req.Quantity, r.MinQuantity, r.MaxQuantity) {
			continue
		}
		return r
	}
	return nil
}

// RuleUnitPrice converts a base-price rule value to a per-unit price.
func RuleUnitPrice(r CalculationRule) decimal.Decimal {
	if r.RuleType == RuleBasePer100 {
		return r.Value.Div(hundred)
	}
	return r.Value
}

func describeRule(r CalculationRule, unit decimal.Decimal) string {
	return fmt.Sprintf("Rule #%d %s (priority %d): %s = %s/pcs",
		r.ID, r.RuleType, r.Priority, r.Value.String(), unit.StringFixed(4))
}
