package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"adtime-printshop/internal/pricing"
)

var errSkipped = errors.New("skipped")

func isSkip(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case skipButton, "skip", "нет":
		return true
	}
	return false
}

func ParsePositiveInt(text string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive: %d", v)
	}
	return v, nil
}

// ParseOptionalID returns errSkipped for a skip answer.
func ParseOptionalID(text string) (*int64, error) {
	if isSkip(text) {
		return nil, errSkipped
	}
	v, err := ParsePositiveInt(text)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseDimensions accepts "90x50", "90 x 50", "90*50" or "90×50" in mm.
func ParseDimensions(text string) (width, height float64, err error) {
	normalized := strings.NewReplacer("×", "x", "х", "x", "*", "x", "X", "x", ",", ".").Replace(text)
	parts := strings.Split(normalized, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", text)
	}

	width, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width: %w", err)
	}
	height, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("dimensions must be positive")
	}
	return width, height, nil
}

func ParseLamination(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || isSkip(text) {
		return pricing.NoLamination
	}
	return text
}
