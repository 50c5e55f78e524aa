// Package search indexes the product catalog in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/damneddesigns/storefront/internal/application/catalog"
	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

const defaultIndex = "storefront-products"

// ErrSearchUnavailable is returned when Elasticsearch rejects a request
var ErrSearchUnavailable = errors.New("search engine unavailable")

// NewClient connects to Elasticsearch and verifies the cluster responds
func NewClient(cfg config.SearchConfig, logger *zap.Logger) (*elasticsearch.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("search addresses are required")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to reach search cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: %s", ErrSearchUnavailable, strings.TrimSpace(string(body)))
	}

	logger.Info("Connected to search cluster", zap.Strings("addresses", cfg.Addresses))
	return client, nil
}

// productDocument is the shape stored in the search index
type productDocument struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	SKUs        []string        `json:"skus"`
	MinPrice    decimal.Decimal `json:"min_price"`
	Enabled     bool            `json:"enabled"`
}

// ProductIndex maintains the product search index
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewProductIndex creates a ProductIndex on an existing client
func NewProductIndex(client *elasticsearch.Client, index string, logger *zap.Logger) *ProductIndex {
	if index == "" {
		index = defaultIndex
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductIndex{client: client, index: index, logger: logger}
}

// IndexProduct writes or replaces the document for a product
func (p *ProductIndex) IndexProduct(ctx context.Context, product *catalog.Product) error {
	doc := productDocument{
		ID:          product.ID.String(),
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Enabled:     product.Enabled,
	}
	for _, v := range product.Variants {
		doc.SKUs = append(doc.SKUs, v.SKU)
		if doc.MinPrice.IsZero() || v.Price.LessThan(doc.MinPrice) {
			doc.MinPrice = v.Price
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode product document: %w", err)
	}

	res, err := p.client.Index(
		p.index,
		&buf,
		p.client.Index.WithContext(ctx),
		p.client.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: index returned %s", ErrSearchUnavailable, res.Status())
	}

	p.logger.Debug("Indexed product",
		zap.String("product_id", doc.ID),
		zap.String("slug", doc.Slug),
	)
	return nil
}

// RemoveProduct deletes a product document. Missing documents are not an error.
func (p *ProductIndex) RemoveProduct(ctx context.Context, productID uuid.UUID) error {
	res, err := p.client.Delete(
		p.index,
		productID.String(),
		p.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to remove product from index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: delete returned %s", ErrSearchUnavailable, res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-field query and returns matching product IDs
// ranked by relevance, plus the total hit count
func (p *ProductIndex) Search(ctx context.Context, query string, page, pageSize int) ([]uuid.UUID, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"name^2", "skus^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"enabled": true},
				},
			},
		},
		"from":    (page - 1) * pageSize,
		"size":    pageSize,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(p.index),
		p.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("%w: search returned %s", ErrSearchUnavailable, res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.Source.ID)
		if err != nil {
			p.logger.Warn("Skipping search hit with invalid product id",
				zap.String("id", hit.Source.ID),
			)
			continue
		}
		ids = append(ids, id)
	}
	return ids, r.Hits.Total.Value, nil
}

var _ catalogapp.ProductSearcher = (*ProductIndex)(nil)
