package main

import (
	"net/http"
	"time"

	"blackboxscan/internal/config"
	"blackboxscan/internal/handler"
	"blackboxscan/internal/middleware"
	"blackboxscan/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// newRouter builds the gin engine. Global middleware, the Prometheus one
// included, must be attached before any route is registered: gin copies the
// chain into each route at registration time.
func newRouter(cfg *config.Config, log *zap.Logger, renderer render.HTMLRender, h *handler.Handler, dispatchLimit gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	if renderer != nil {
		router.HTMLRender = renderer
	}
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())
	router.Use(handler.CustomErrorMiddleware(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", handler.FormIDHeader, middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	router.StaticFS("/static", web.StaticFS())

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	h.RegisterRoutes(router, dispatchLimit)
	return router
}
