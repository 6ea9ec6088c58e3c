package handlers

import (
	"filehost/internal/config"
	"filehost/internal/logger"
	"filehost/internal/metrics"
	"filehost/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options tunes the HTTP layer.
type Options struct {
	MaxUploadBytes int64
	CookieSecure   bool
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies. log and m may be nil.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	return &Handler{services: services, log: log, metrics: m, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.observe)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	// Public pages
	h.registerAuthRoutes(router)

	// Signed-in users
	h.registerFileRoutes(router)

	// Administrators
	h.registerAdminRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)
	r.GET("/logout", h.logout)
}

func (h *Handler) registerFileRoutes(r *gin.Engine) {
	files := r.Group("/", h.sessionMiddleware)
	{
		files.GET("/dashboard", h.dashboard)
		files.POST("/upload", h.upload)
		files.GET("/download/:filename", h.download)
		files.POST("/delete/:filename", h.deleteFile)
	}
}

func (h *Handler) registerAdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin", h.sessionMiddleware, h.adminMiddleware)
	{
		admin.GET("", h.adminOverview)
		admin.POST("/approve/:username", h.approveUser)
		admin.POST("/deny/:username", h.denyUser)
		admin.POST("/delete/:username", h.deleteUser)
		admin.POST("/toggle-role/:username", h.toggleRole)
		admin.GET("/download-file/:username/:filename", h.adminDownloadFile)
		admin.POST("/delete-file/:username/:filename", h.adminDeleteFile)
		admin.GET("/activity", h.getActivity)
		admin.GET("/ws", h.wsStats)
	}
}
