// Package seo generates the storefront sitemap and robots.txt.
package seo

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/domain/catalog"
	"github.com/damneddesigns/storefront/internal/domain/shared"
)

const (
	sitemapCacheKey = "seo:sitemap"
	sitemapPageSize = 100
)

// staticRoutes are storefront pages that always appear in the sitemap
var staticRoutes = []string{"", "shop", "about", "contact", "policies"}

// Cache stores the rendered sitemap between regenerations
type Cache interface {
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// SitemapService builds sitemap.xml from the live catalog and caches
// the rendered document
type SitemapService struct {
	products    catalog.ProductRepository
	collections catalog.CollectionRepository
	cache       Cache
	shopURL     string
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewSitemapService creates a sitemap service. shopURL is the canonical
// public URL of the storefront.
func NewSitemapService(
	products catalog.ProductRepository,
	collections catalog.CollectionRepository,
	cache Cache,
	shopURL string,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *SitemapService {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SitemapService{
		products:    products,
		collections: collections,
		cache:       cache,
		shopURL:     strings.TrimRight(shopURL, "/"),
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Sitemap returns the sitemap XML, serving from cache when possible
func (s *SitemapService) Sitemap(ctx context.Context) (string, error) {
	if s.cache != nil {
		cached, err := s.cache.GetString(ctx, sitemapCacheKey)
		if err == nil {
			return cached, nil
		}
	}
	return s.Regenerate(ctx)
}

// Regenerate rebuilds the sitemap from the catalog and refreshes the cache
func (s *SitemapService) Regenerate(ctx context.Context) (string, error) {
	start := time.Now()

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, route := range staticRoutes {
		loc := s.shopURL
		if route != "" {
			loc += "/" + route
		}
		set.URLs = append(set.URLs, urlEntry{Loc: loc, ChangeFreq: "weekly"})
	}

	if err := s.appendCollections(ctx, &set); err != nil {
		return "", err
	}
	if err := s.appendProducts(ctx, &set); err != nil {
		return "", err
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render sitemap: %w", err)
	}
	doc := xml.Header + string(body)

	if s.cache != nil {
		if err := s.cache.SetString(ctx, sitemapCacheKey, doc, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache sitemap", zap.Error(err))
		}
	}

	s.logger.Info("Sitemap regenerated",
		zap.Int("urls", len(set.URLs)),
		zap.Duration("duration", time.Since(start)),
	)
	return doc, nil
}

func (s *SitemapService) appendCollections(ctx context.Context, set *urlSet) error {
	filter := shared.DefaultFilter()
	filter.PageSize = sitemapPageSize
	for page := 1; ; page++ {
		filter.Page = page
		collections, err := s.collections.FindAll(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load collections for sitemap: %w", err)
		}
		for _, c := range collections {
			if !c.Enabled {
				continue
			}
			set.URLs = append(set.URLs, urlEntry{
				Loc:        s.shopURL + "/collections/" + c.Slug,
				LastMod:    c.UpdatedAt.Format("2006-01-02"),
				ChangeFreq: "weekly",
			})
		}
		if len(collections) < sitemapPageSize {
			return nil
		}
	}
}

func (s *SitemapService) appendProducts(ctx context.Context, set *urlSet) error {
	filter := shared.DefaultFilter()
	filter.PageSize = sitemapPageSize
	for page := 1; ; page++ {
		filter.Page = page
		products, err := s.products.FindAll(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load products for sitemap: %w", err)
		}
		for _, p := range products {
			if !p.Enabled {
				continue
			}
			set.URLs = append(set.URLs, urlEntry{
				Loc:        s.shopURL + "/products/" + p.Slug,
				LastMod:    p.UpdatedAt.Format("2006-01-02"),
				ChangeFreq: "daily",
			})
		}
		if len(products) < sitemapPageSize {
			return nil
		}
	}
}

// RobotsTxt returns the robots.txt body pointing crawlers at the sitemap
func (s *SitemapService) RobotsTxt() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /checkout\n")
	b.WriteString("Disallow: /cart\n")
	b.WriteString("Disallow: /account\n")
	b.WriteString("Allow: /\n\n")
	b.WriteString("Sitemap: " + s.shopURL + "/sitemap.xml\n")
	return b.String()
}
