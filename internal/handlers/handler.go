package handlers

import (
	"smart_kettle/internal/logger"
	"smart_kettle/internal/service"
	"smart_kettle/internal/thermal"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options tunes the HTTP surface.
type Options struct {
	// AuthEnabled puts the JSON API behind bearer tokens. The page, the
	// form and the status streams stay open on the local network.
	AuthEnabled bool
	// Locale selects the language of status messages on the streams.
	Locale thermal.Locale
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if !thermal.KnownLocale(opts.Locale) {
		opts.Locale = thermal.LocalePL
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(pageTemplate)
	router.NoRoute(h.notFound)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	// Browser UI: page, form post and the status streams
	router.GET("/", h.page)
	router.POST("/", h.submitForm)
	router.GET("/events", h.events)
	router.GET("/ws", h.wsConnect)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	if h.opts.AuthEnabled {
		api.Use(h.userIdMiddleware)
	}
	{
		h.registerKettleRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerKettleRoutes(api *gin.RouterGroup) {
	kettle := api.Group("/kettle")
	{
		kettle.GET("/status", h.getStatus)
		// Body example: {"target_temp_c":90}
		kettle.POST("/target", h.setTarget)
		kettle.POST("/test", h.startTest)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
