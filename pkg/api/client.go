package api

// CATALOG API CLIENT

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"adtime-printshop/internal/pricing"

	"go.uber.org/zap"
)

var errNotFound = errors.New("not found")

// Client reads reference data from the catalog service that owns it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ pricing.ReferenceStore = (*Client)(nil)

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*pricing.Product, error) {
	var product pricing.Product
	err := c.get(ctx, fmt.Sprintf("/api/products/%d", id), nil, &product)
	if errors.Is(err, errNotFound) {
		c.logger.Debug("Product not found in catalog", zap.Int64("product_id", id))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

func (c *Client) ListMaterials(ctx context.Context) ([]pricing.Material, error) {
	var materials []pricing.Material
	if err := c.get(ctx, "/api/materials", nil, &materials); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

func (c *Client) ListPrintOptions(ctx context.Context) ([]pricing.PrintOption, error) {
	var options []pricing.PrintOption
	if err := c.get(ctx, "/api/print-options", nil, &options); err != nil {
		return nil, fmt.Errorf("list print options: %w", err)
	}
	return options, nil
}

func (c *Client) ListWorks(ctx context.Context) ([]pricing.Work, error) {
	var works []pricing.Work
	if err := c.get(ctx, "/api/works", nil, &works); err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	return works, nil
}

// ListActiveRules asks the catalog for active rules of the product and
// wildcard rules. Ordering is imposed by the engine.
func (c *Client) ListActiveRules(ctx context.Context, productID int64) ([]pricing.CalculationRule, error) {
	query := url.Values{
		"product_id": {strconv.FormatInt(productID, 10)},
		"active":     {"true"},
	}
	var rules []pricing.CalculationRule
	if err := c.get(ctx, "/api/calculation-rules", query, &rules); err != nil {
		return nil, fmt.Errorf("list calculation rules: %w", err)
	}
	return rules, nil
}

func (c *Client) ListMatrixEntries(ctx context.Context, productID int64) ([]pricing.MatrixEntry, error) {
	query := url.Values{"product_id": {strconv.FormatInt(productID, 10)}}
	var entries []pricing.MatrixEntry
	if err := c.get(ctx, "/api/pricing-matrix", query, &entries); err != nil {
		return nil, fmt.Errorf("list pricing matrix: %w", err)
	}
	return entries, nil
}
