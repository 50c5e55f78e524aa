package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
	"github.com/damneddesigns/storefront/internal/infrastructure/config"
)

// newSearchTestServer returns an httptest server that satisfies the client's
// product check header
func newSearchTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
}

func newTestIndex(t *testing.T, server *httptest.Server) *ProductIndex {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return NewProductIndex(client, "test-products", zap.NewNop())
}

func testProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Osiris Knife", "A titanium folder")
	require.NoError(t, err)
	price, err := valueobject.NewMoneyFromString("129.95", "USD")
	require.NoError(t, err)
	_, err = p.AddVariant("OSIRIS-TI", "Titanium", price, 10)
	require.NoError(t, err)
	return p
}

func TestNewClient_RequiresAddresses(t *testing.T) {
	_, err := NewClient(config.SearchConfig{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addresses are required")
}

func TestNewClient_PingsCluster(t *testing.T) {
	server := newSearchTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"version":{"number":"9.0.0"}}`)
	})
	defer server.Close()

	client, err := NewClient(config.SearchConfig{Addresses: []string{server.URL}}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestProductIndex_IndexProduct(t *testing.T) {
	product := testProduct(t)

	var gotPath string
	var gotDoc productDocument
	server := newSearchTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":"created"}`)
	})
	defer server.Close()

	idx := newTestIndex(t, server)
	err := idx.IndexProduct(context.Background(), product)
	require.NoError(t, err)

	assert.Equal(t, "/test-products/_doc/"+product.ID.String(), gotPath)
	assert.Equal(t, "Osiris Knife", gotDoc.Name)
	assert.Equal(t, "osiris-knife", gotDoc.Slug)
	assert.Equal(t, []string{"OSIRIS-TI"}, gotDoc.SKUs)
	assert.Equal(t, "129.95", gotDoc.MinPrice.StringFixed(2))
	assert.True(t, gotDoc.Enabled)
}

func TestProductIndex_Search(t *testing.T) {
	matchID := uuid.New()

	var gotQuery map[string]interface{}
	server := newSearchTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"%s"}}]}}`, matchID)
	})
	defer server.Close()

	idx := newTestIndex(t, server)
	ids, total, err := idx.Search(context.Background(), "osiris", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, ids, 1)
	assert.Equal(t, matchID, ids[0])

	boolQuery := gotQuery["query"].(map[string]interface{})["bool"].(map[string]interface{})
	multiMatch := boolQuery["must"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "osiris", multiMatch["query"])
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])
}

func TestProductIndex_SearchUnavailable(t *testing.T) {
	server := newSearchTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	idx := newTestIndex(t, server)
	_, _, err := idx.Search(context.Background(), "osiris", 1, 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestProductIndex_RemoveProductToleratesMissing(t *testing.T) {
	server := newSearchTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"result":"not_found"}`)
	})
	defer server.Close()

	idx := newTestIndex(t, server)
	err := idx.RemoveProduct(context.Background(), uuid.New())
	require.NoError(t, err)
}
