package seo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

type fakeProductRepo struct {
	products []catalog.Product
	err      error
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepo) FindVariant(ctx context.Context, variantID uuid.UUID) (*catalog.ProductVariant, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if filter.Page > 1 {
		return nil, nil
	}
	return f.products, nil
}

func (f *fakeProductRepo) FindByCollection(ctx context.Context, collectionID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Save(ctx context.Context, product *catalog.Product) error { return nil }

func (f *fakeProductRepo) SaveVariant(ctx context.Context, variant *catalog.ProductVariant) error {
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeProductRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(f.products)), nil
}

type fakeCollectionRepo struct {
	collections []catalog.Collection
}

func (f *fakeCollectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Collection, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeCollectionRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Collection, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeCollectionRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Collection, error) {
	if filter.Page > 1 {
		return nil, nil
	}
	return f.collections, nil
}

func (f *fakeCollectionRepo) Save(ctx context.Context, collection *catalog.Collection) error {
	return nil
}

func (f *fakeCollectionRepo) AddProduct(ctx context.Context, collectionID, productID uuid.UUID) error {
	return nil
}

func (f *fakeCollectionRepo) RemoveProduct(ctx context.Context, collectionID, productID uuid.UUID) error {
	return nil
}

func (f *fakeCollectionRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) GetString(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func testProduct(t *testing.T, name string, enabled bool) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "")
	require.NoError(t, err)
	p.Enabled = enabled
	return *p
}

func testCollection(t *testing.T, name string, enabled bool) catalog.Collection {
	t.Helper()
	c, err := catalog.NewCollection(name, "", 0)
	require.NoError(t, err)
	c.Enabled = enabled
	return *c
}

func TestSitemapService_Regenerate(t *testing.T) {
	products := &fakeProductRepo{products: []catalog.Product{
		testProduct(t, "Osiris Knife", true),
		testProduct(t, "Hidden Prototype", false),
	}}
	collections := &fakeCollectionRepo{collections: []catalog.Collection{
		testCollection(t, "Knives", true),
		testCollection(t, "Archived", false),
	}}
	cache := newFakeCache()

	svc := NewSitemapService(products, collections, cache, "https://damneddesigns.com/", time.Hour, zap.NewNop())

	doc, err := svc.Regenerate(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, xmlHeaderPrefix))
	assert.Contains(t, doc, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, doc, "<loc>https://damneddesigns.com</loc>")
	assert.Contains(t, doc, "<loc>https://damneddesigns.com/shop</loc>")
	assert.Contains(t, doc, "<loc>https://damneddesigns.com/products/osiris-knife</loc>")
	assert.Contains(t, doc, "<loc>https://damneddesigns.com/collections/knives</loc>")
	assert.NotContains(t, doc, "hidden-prototype")
	assert.NotContains(t, doc, "archived")

	// cached for the next read
	assert.Equal(t, doc, cache.values[sitemapCacheKey])
}

const xmlHeaderPrefix = "<?xml"

func TestSitemapService_ServesFromCache(t *testing.T) {
	products := &fakeProductRepo{err: errors.New("database down")}
	collections := &fakeCollectionRepo{}
	cache := newFakeCache()
	cache.values[sitemapCacheKey] = "<cached/>"

	svc := NewSitemapService(products, collections, cache, "https://damneddesigns.com", time.Hour, zap.NewNop())

	doc, err := svc.Sitemap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<cached/>", doc)
}

func TestSitemapService_RegenerateFailsWhenCatalogUnavailable(t *testing.T) {
	products := &fakeProductRepo{err: errors.New("database down")}
	svc := NewSitemapService(products, &fakeCollectionRepo{}, nil, "https://damneddesigns.com", time.Hour, zap.NewNop())

	_, err := svc.Sitemap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sitemap")
}

func TestSitemapService_RobotsTxt(t *testing.T) {
	svc := NewSitemapService(nil, nil, nil, "https://damneddesigns.com", 0, nil)

	robots := svc.RobotsTxt()
	assert.Contains(t, robots, "User-agent: *")
	assert.Contains(t, robots, "Disallow: /checkout")
	assert.Contains(t, robots, "Sitemap: https://damneddesigns.com/sitemap.xml")
}
