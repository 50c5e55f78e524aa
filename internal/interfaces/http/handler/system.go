package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/damneddesigns/storefront/internal/application/seo"
	"github.com/damneddesigns/storefront/internal/infrastructure/health"
	"github.com/damneddesigns/storefront/internal/interfaces/http/dto"
)

// SystemHandler serves health probes and crawler documents.
type SystemHandler struct {
	BaseHandler
	monitor *health.Monitor
	sitemap *seo.SitemapService
}

// NewSystemHandler creates a system handler. monitor and sitemap may be
// nil when disabled.
func NewSystemHandler(monitor *health.Monitor, sitemap *seo.SitemapService, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		monitor:     monitor,
		sitemap:     sitemap,
	}
}

// RegisterRoutes registers the API health route.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// RegisterRootRoutes registers crawler documents at the engine root.
func (h *SystemHandler) RegisterRootRoutes(engine *gin.Engine) {
	engine.GET("/sitemap.xml", h.Sitemap)
	engine.GET("/robots.txt", h.Robots)
}

// Health returns the last health snapshot. An unhealthy reading is
// reported with 503 so load balancers can rotate the instance out.
func (h *SystemHandler) Health(c *gin.Context) {
	if h.monitor == nil {
		h.Success(c, gin.H{"status": string(health.StatusHealthy)})
		return
	}

	snapshot := h.monitor.Last()
	if snapshot == nil {
		snapshot = h.monitor.Check(c.Request.Context())
	}

	status := http.StatusOK
	if snapshot.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(snapshot))
}

// Sitemap serves the cached sitemap document.
func (h *SystemHandler) Sitemap(c *gin.Context) {
	if h.sitemap == nil {
		c.Status(http.StatusNotFound)
		return
	}

	doc, err := h.sitemap.Sitemap(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build sitemap", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(doc))
}

// Robots serves the robots.txt document.
func (h *SystemHandler) Robots(c *gin.Context) {
	if h.sitemap == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.String(http.StatusOK, h.sitemap.RobotsTxt())
}
