package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers a group of routes on the API router.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Func adapts a plain function to the RouteRegistrar interface.
type Func func(rg *gin.RouterGroup)

// RegisterRoutes implements RouteRegistrar.
func (f Func) RegisterRoutes(rg *gin.RouterGroup) {
	f(rg)
}

type entry struct {
	middleware []gin.HandlerFunc
	registrar  RouteRegistrar
}

// Router assembles the gin engine from registered route groups.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	entries    []entry
}

// New creates a router on the given engine.
func New(engine *gin.Engine) *Router {
	return &Router{
		engine:     engine,
		apiVersion: "v1",
	}
}

// Register adds route registrars to the router.
func (r *Router) Register(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		r.entries = append(r.entries, entry{registrar: registrar})
	}
}

// RegisterWith adds route registrars whose routes all run behind the
// given middleware.
func (r *Router) RegisterWith(middleware []gin.HandlerFunc, registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		r.entries = append(r.entries, entry{middleware: middleware, registrar: registrar})
	}
}

// Setup mounts all registered routes under /api/<version>.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, e := range r.entries {
		group := api
		if len(e.middleware) > 0 {
			group = api.Group("", e.middleware...)
		}
		e.registrar.RegisterRoutes(group)
	}
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
