package brightstub

import (
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/brightchat/internal/brightstub/handler"
	"github.com/kiosk404/brightchat/internal/brightstub/middleware"
	"github.com/kiosk404/brightchat/internal/brightstub/scenario"
	"github.com/kiosk404/brightchat/pkg/version"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	catalog    *scenario.Catalog
	authConfig middleware.AuthConfig
	frameDelay time.Duration
	profiling  bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.BearerAuth(deps.authConfig))
}

func installController(g *gin.Engine, deps *routerDeps) {
	g.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	g.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	})

	if deps.profiling {
		pprof.Register(g)
	}

	agentHandler := handler.NewAgentHandler(deps.catalog)
	chatHandler := handler.NewChatHandler(deps.catalog, deps.frameDelay)

	apiV1 := g.Group("/api/v1")
	{
		apiV1.GET("/agents", agentHandler.List)
		apiV1.POST("/agents/:id/chat", chatHandler.Chat)
	}
}
