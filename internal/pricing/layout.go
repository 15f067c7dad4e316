package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// StandardSize is a product format recognised from the product name.
type StandardSize struct {
	Keyword string
	Label   string
	Width   float64
	Height  float64
}

// Checked in order, first keyword found in the lower-cased name wins.
var standardSizes = []StandardSize{
	{Keyword: "vizitin", Label: "business card", Width: 90, Height: 50},
	{Keyword: "business card", Label: "business card", Width: 90, Height: 50},
	{Keyword: "a3", Label: "A3", Width: 297, Height: 420},
	{Keyword: "a4", Label: "A4", Width: 210, Height: 297},
	{Keyword: "a5", Label: "A5", Width: 148, Height: 210},
	{Keyword: "a6", Label: "A6", Width: 105, Height: 148},
}

// designKeywords mark products priced manually by the design team.
var designKeywords = []string{"dizain", "design", "maket"}

func DetectStandardSize(productName string) (StandardSize, bool) {
	name := strings.ToLower(productName)
	for _, s := range standardSizes {
		if strings.Contains(name, s.Keyword) {
			return s, true
		}
	}
	return StandardSize{}, false
}

func IsDesignService(productName string) bool {
	name := strings.ToLower(productName)
	for _, kw := range designKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// maxItemsPerSheet caps the grid count for degenerate, near-zero item sizes.
const maxItemsPerSheet = math.MaxInt32

// ItemsPerSheet counts how many items fit on the sheet in a uniform grid,
// trying the item as-is and rotated by 90 degrees. The result is between 1
// and maxItemsPerSheet.
func ItemsPerSheet(sheetW, sheetH, itemW, itemH float64) int {
	if itemW <= 0 || itemH <= 0 {
		return 1
	}
	straight := math.Floor(sheetW/itemW) * math.Floor(sheetH/itemH)
	rotated := math.Floor(sheetW/itemH) * math.Floor(sheetH/itemW)
	n := math.Max(straight, rotated)
	switch {
	case math.IsNaN(n) || n < 1:
		return 1
	case math.IsInf(n, 1) || n >= maxItemsPerSheet:
		return maxItemsPerSheet
	}
	return int(n)
}

type sheetCost struct {
	itemsPerSheet int
	unitPrice     decimal.Decimal
	trace         []string
}

// sheetLayoutCost prices one item from the production sheet it is printed on.
// ok is false when the item dimensions cannot be resolved.
func sheetLayoutCost(snap *Snapshot, req Request, opts Options) (sheetCost, bool) {
	var res sheetCost

	var width, height float64
	switch {
	case req.Width != nil && req.Height != nil && *req.Width > 0 && *req.Height > 0:
		width, height = *req.Width, *req.Height
	default:
		size, found := DetectStandardSize(snap.Product.Name)
		if !found {
			return res, false
		}
		width, height = size.Width, size.Height
		res.trace = append(res.trace, fmt.Sprintf("Detected size %s: %gx%gmm", size.Label, width, height))
	}

	res.itemsPerSheet = ItemsPerSheet(opts.SheetWidth, opts.SheetHeight, width, height)
	perSheet := decimal.NewFromInt(int64(res.itemsPerSheet))
	res.trace = append(res.trace, fmt.Sprintf("Sheet layout: %d pcs per %gx%gmm sheet",
		res.itemsPerSheet, opts.SheetWidth, opts.SheetHeight))

	printKey := opts.SheetPrintType
	if opts.SheetPrintTypeFromRequest && req.PrintType != nil && *req.PrintType != "" {
		printKey = *req.PrintType
	}
	printPrice, printLabel := opts.DefaultPrintPrice, "default"
	if opt, found := snap.printOption(printKey); found {
		printPrice, printLabel = opt.Price, opt.Name
	}
	printItem := printPrice.Div(perSheet)
	res.trace = append(res.trace, fmt.Sprintf("Print (%s): %s/sheet = %s/pcs",
		printLabel, printPrice.StringFixed(2), printItem.StringFixed(4)))

	paperPrice, paperLabel := opts.DefaultPaperPrice, "default"
	if req.MaterialID != nil {
		if m, found := snap.material(*req.MaterialID); found {
			paperPrice, paperLabel = m.UnitPrice, m.Name
		}
	}
	paperItem := paperPrice.Div(perSheet)
	res.trace = append(res.trace, fmt.Sprintf("Paper (%s): %s/sheet = %s/pcs",
		paperLabel, paperPrice.StringFixed(2), paperItem.StringFixed(4)))

	laminationItem := decimal.Zero
	if lam := req.lamination(); lam != NoLamination {
		if w, found := snap.work(lam); found {
			laminationItem = w.Price.Div(perSheet)
			res.trace = append(res.trace, fmt.Sprintf("Lamination (%s): %s/sheet = %s/pcs",
				w.Operation, w.Price.StringFixed(2), laminationItem.StringFixed(4)))
		}
	}

	res.unitPrice = printItem.Add(paperItem).Add(laminationItem)
	return res, true
}
