package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/damneddesigns/storefront/internal/application/catalog"
	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
	"github.com/damneddesigns/storefront/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProductRepo struct {
	catalog.ProductRepository
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]*catalog.Product{}}
}

func (r *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

type fakeCollectionRepo struct {
	catalog.CollectionRepository
}

func (r *fakeCollectionRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Collection, error) {
	return nil, nil
}

func (r *fakeCollectionRepo) FindBySlug(_ context.Context, _ string) (*catalog.Collection, error) {
	return nil, shared.ErrNotFound
}

func seedProduct(t *testing.T, repo *fakeProductRepo) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Osiris Knife", "Titanium frame lock")
	require.NoError(t, err)
	price := valueobject.NewMoneyUSD(decimal.NewFromFloat(129.95))
	_, err = p.AddVariant("OSIRIS-TI", "Titanium", price, 10)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func newCatalogRouter(t *testing.T, products *fakeProductRepo) *gin.Engine {
	t.Helper()
	svc := catalogapp.NewService(products, &fakeCollectionRepo{}, zap.NewNop())
	engine := gin.New()
	r := router.New(engine)
	r.Register(NewCatalogHandler(svc, zap.NewNop()))
	r.Setup()
	return engine
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetProductEndpoint(t *testing.T) {
	repo := newFakeProductRepo()
	seedProduct(t, repo)
	engine := newCatalogRouter(t, repo)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/osiris-knife", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Contains(t, w.Body.String(), "129.95")
}

func TestGetProductEndpointNotFound(t *testing.T) {
	engine := newCatalogRouter(t, newFakeProductRepo())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/ghost-knife", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestListProductsEndpoint(t *testing.T) {
	repo := newFakeProductRepo()
	seedProduct(t, repo)
	engine := newCatalogRouter(t, repo)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&page_size=20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestCreateProductEndpointValidation(t *testing.T) {
	repo := newFakeProductRepo()
	svc := catalogapp.NewService(repo, &fakeCollectionRepo{}, zap.NewNop())
	engine := gin.New()
	r := router.New(engine)
	r.Register(NewAdminCatalogHandler(svc, zap.NewNop()))
	r.Setup()

	// missing the required variants array
	body := strings.NewReader(`{"name":"Togo Knife"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestHandleErrorMapsDomainCodes(t *testing.T) {
	base := NewBaseHandler(zap.NewNop())
	engine := gin.New()
	engine.GET("/boom", func(c *gin.Context) {
		base.HandleError(c, shared.ErrInsufficientStock)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeInsufficientStock)
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	base := NewBaseHandler(zap.NewNop())
	engine := gin.New()
	engine.GET("/boom", func(c *gin.Context) {
		base.HandleError(c, assert.AnError)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.Contains(t, w.Body.String(), dto.ErrCodeInternal)
}
