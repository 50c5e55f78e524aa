// Package catalog exposes the storefront catalog use cases: browsing
// products and collections, full-text search and admin asset uploads.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
)

const uploadURLExpiration = 15 * time.Minute

// Service implements catalog browsing and administration
type Service struct {
	products    catalog.ProductRepository
	collections catalog.CollectionRepository
	searcher    ProductSearcher
	storage     AssetStorage
	logger      *zap.Logger
}

// NewService creates a catalog service. searcher and storage are optional;
// without a searcher, search falls back to the repository's filter search.
func NewService(products catalog.ProductRepository, collections catalog.CollectionRepository, logger *zap.Logger) *Service {
	return &Service{
		products:    products,
		collections: collections,
		logger:      logger,
	}
}

// SetSearcher wires a full-text search index into the service
func (s *Service) SetSearcher(searcher ProductSearcher) {
	s.searcher = searcher
}

// SetAssetStorage wires object storage for product media
func (s *Service) SetAssetStorage(storage AssetStorage) {
	s.storage = storage
}

// ListProducts returns a page of enabled products, optionally scoped to a
// collection and filtered by a search query
func (s *Service) ListProducts(ctx context.Context, req *ListProductsRequest) (*shared.Paginated[ProductResponse], error) {
	filter := buildFilter(req)

	if req.Search != "" {
		return s.searchProducts(ctx, req.Search, filter)
	}

	var (
		products []catalog.Product
		err      error
	)
	if req.CollectionSlug != "" {
		collection, cErr := s.collections.FindBySlug(ctx, req.CollectionSlug)
		if cErr != nil {
			return nil, cErr
		}
		products, err = s.products.FindByCollection(ctx, collection.ID, filter)
	} else {
		products, err = s.products.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	return paginate(products, total, filter), nil
}

// GetProduct returns a product by its slug
func (s *Service) GetProduct(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.Enabled {
		return nil, shared.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// GetVariant returns a single variant by ID
func (s *Service) GetVariant(ctx context.Context, variantID uuid.UUID) (*VariantResponse, error) {
	variant, err := s.products.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	resp := ToVariantResponse(variant)
	return &resp, nil
}

// ListCollections returns all enabled collections ordered by position
func (s *Service) ListCollections(ctx context.Context) ([]CollectionResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 100
	filter.OrderBy = "position"
	filter.OrderDir = "asc"

	collections, err := s.collections.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	out := make([]CollectionResponse, 0, len(collections))
	for i := range collections {
		if !collections[i].Enabled {
			continue
		}
		out = append(out, *ToCollectionResponse(&collections[i]))
	}
	return out, nil
}

// GetCollection returns a collection by its slug
func (s *Service) GetCollection(ctx context.Context, slug string) (*CollectionResponse, error) {
	collection, err := s.collections.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !collection.Enabled {
		return nil, shared.ErrNotFound
	}
	return ToCollectionResponse(collection), nil
}

// CreateProduct creates a product with its variants and indexes it
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	for _, v := range req.Variants {
		price, pErr := valueobject.NewMoneyFromString(v.Price, valueobject.DefaultCurrency)
		if pErr != nil {
			return nil, pErr
		}
		if _, vErr := product.AddVariant(v.SKU, v.Name, price, v.StockLevel); vErr != nil {
			return nil, vErr
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.indexProduct(ctx, product)

	return ToProductResponse(product), nil
}

// GenerateAssetUploadURL hands out a presigned PUT URL for product media
func (s *Service) GenerateAssetUploadURL(ctx context.Context, req *UploadURLRequest) (*UploadURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Asset storage is not configured")
	}

	key := assetKey(req.FileName)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, uploadURLExpiration)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadURLResponse{
		UploadURL: uploadURL,
		PublicURL: s.storage.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// searchProducts queries the search index, falling back to the repository's
// LIKE search when the index is unavailable or not configured
func (s *Service) searchProducts(ctx context.Context, query string, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	if s.searcher != nil {
		ids, total, err := s.searcher.Search(ctx, query, filter.Page, filter.Limit())
		if err == nil {
			products := make([]catalog.Product, 0, len(ids))
			for _, id := range ids {
				product, pErr := s.products.FindByID(ctx, id)
				if pErr != nil {
					if errors.Is(pErr, shared.ErrNotFound) {
						continue
					}
					return nil, pErr
				}
				products = append(products, *product)
			}
			return paginate(products, total, filter), nil
		}
		s.logger.Warn("Search index unavailable, falling back to database search",
			zap.String("query", query),
			zap.Error(err))
	}

	filter.Search = query
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	return paginate(products, total, filter), nil
}

// indexProduct pushes a product into the search index, logging on failure.
// Indexing is best-effort: the catalog write has already committed.
func (s *Service) indexProduct(ctx context.Context, product *catalog.Product) {
	if s.searcher == nil {
		return
	}
	if err := s.searcher.IndexProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to index product",
			zap.String("product_id", product.ID.String()),
			zap.String("slug", product.Slug),
			zap.Error(err))
	}
}

func buildFilter(req *ListProductsRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Filters["enabled"] = true
	return filter
}

func paginate(products []catalog.Product, total int64, filter shared.Filter) *shared.Paginated[ProductResponse] {
	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *ToProductResponse(&products[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page
}

// assetKey builds a collision-free object key preserving the file extension
func assetKey(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	slug, err := catalog.Slugify(base)
	if err != nil {
		slug = "asset"
	}
	return fmt.Sprintf("assets/%s-%s%s", slug, uuid.New().String()[:8], ext)
}
