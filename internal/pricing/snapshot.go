package pricing

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReferenceStore is read access to the catalog data owned by the order
// management screens. ListActiveRules and ListMatrixEntries return rows for
// the product plus wildcard rows. GetProduct returns nil, nil when the product
// does not exist.
type ReferenceStore interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListMaterials(ctx context.Context) ([]Material, error)
	ListPrintOptions(ctx context.Context) ([]PrintOption, error)
	ListWorks(ctx context.Context) ([]Work, error)
	ListActiveRules(ctx context.Context, productID int64) ([]CalculationRule, error)
	ListMatrixEntries(ctx context.Context, productID int64) ([]MatrixEntry, error)
}

// Snapshot is an immutable view of the reference data for one calculation.
type Snapshot struct {
	Product      Product
	Materials    []Material
	PrintOptions []PrintOption
	Works        []Work
	Rules        []CalculationRule
	Matrix       []MatrixEntry
	Warnings     []string
}

// Raw holds reference rows as fetched, before validation.
type Raw struct {
	Product      *Product
	Materials    []Material
	PrintOptions []PrintOption
	Works        []Work
	Rules        []CalculationRule
	Matrix       []MatrixEntry
}

// NewSnapshot validates raw rows. Unknown products become "Unknown", matrix
// rows with a non-positive QuantityFrom and inactive rules are dropped, and
// rules are ordered by priority descending then ID ascending.
func NewSnapshot(raw Raw, productID int64, logger *zap.Logger) *Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}
	snap := &Snapshot{
		Materials:    raw.Materials,
		PrintOptions: raw.PrintOptions,
		Works:        raw.Works,
	}

	if raw.Product != nil {
		snap.Product = *raw.Product
	} else {
		snap.Product = Product{ID: productID, Name: "Unknown"}
		snap.warn(fmt.Errorf("%w: product %d not found", ErrReferenceDataUnavailable, productID))
	}

	snap.Matrix = make([]MatrixEntry, 0, len(raw.Matrix))
	for _, e := range raw.Matrix {
		if e.QuantityFrom <= 0 {
			err := fmt.Errorf("%w: entry %d has quantity_from %d", ErrMalformedMatrixEntry, e.ID, e.QuantityFrom)
			logger.Warn("Skipping matrix entry",
				zap.Int64("entry_id", e.ID),
				zap.Int64("product_id", e.ProductID),
				zap.Error(err))
			snap.warn(err)
			continue
		}
		snap.Matrix = append(snap.Matrix, e)
	}

	snap.Rules = make([]CalculationRule, 0, len(raw.Rules))
	for _, r := range raw.Rules {
		if r.IsActive {
			snap.Rules = append(snap.Rules, r)
		}
	}
	SortRules(snap.Rules)

	return snap
}

// SortRules orders rules by priority descending. Equal priorities fall back to
// ascending rule ID so ties never depend on storage order.
func SortRules(rules []CalculationRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}

// LoadSnapshot reads all six collections concurrently. A failed read is
// logged and replaced by an empty collection; the failure is kept as a warning.
func LoadSnapshot(ctx context.Context, store ReferenceStore, productID int64, logger *zap.Logger) *Snapshot {
	const operation = "pricing.LoadSnapshot"

	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		raw      Raw
		failures [6]error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw.Product, failures[0] = store.GetProduct(gctx, productID)
		return nil
	})
	g.Go(func() error {
		raw.Materials, failures[1] = store.ListMaterials(gctx)
		return nil
	})
	g.Go(func() error {
		raw.PrintOptions, failures[2] = store.ListPrintOptions(gctx)
		return nil
	})
	g.Go(func() error {
		raw.Works, failures[3] = store.ListWorks(gctx)
		return nil
	})
	g.Go(func() error {
		raw.Rules, failures[4] = store.ListActiveRules(gctx, productID)
		return nil
	})
	g.Go(func() error {
		raw.Matrix, failures[5] = store.ListMatrixEntries(gctx, productID)
		return nil
	})
	_ = g.Wait()

	names := [6]string{"product", "materials", "print options", "works", "calculation rules", "pricing matrix"}
	var warnings []string
	for i, err := range failures {
		if err == nil {
			continue
		}
		logger.Warn("Reference data fetch failed, continuing with empty data",
			zap.String("operation", operation),
			zap.String("collection", names[i]),
			zap.Int64("product_id", productID),
			zap.Error(err))
		warnings = append(warnings, fmt.Errorf("%w: %s: %v", ErrReferenceDataUnavailable, names[i], err).Error())
	}

	// Global tables are never legitimately empty.
	if failures[1] == nil && len(raw.Materials) == 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no materials", ErrReferenceDataUnavailable))
	}
	if failures[2] == nil && len(raw.PrintOptions) == 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no print options", ErrReferenceDataUnavailable))
	}
	if failures[3] == nil && len(raw.Works) == 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no works", ErrReferenceDataUnavailable))
	}

	snap := NewSnapshot(raw, productID, logger)
	snap.Warnings = append(warnings, snap.Warnings...)
	return snap
}

func (s *Snapshot) warn(err error) {
	s.Warnings = append(s.Warnings, err.Error())
}

func (s *Snapshot) material(id int64) (Material, bool) {
	for _, m := range s.Materials {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

func (s *Snapshot) printOption(name string) (PrintOption, bool) {
	for _, p := range s.PrintOptions {
		if p.Name == name {
			return p, true
		}
	}
	return PrintOption{}, false
}

func (s *Snapshot) work(operation string) (Work, bool) {
	for _, w := range s.Works {
		if w.Operation == operation {
			return w, true
		}
	}
	return Work{}, false
}
