package router

import (
	"ama/internal/handlers"
	"ama/internal/metrics"
	"ama/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the route table points at.
type Handlers struct {
	Sessions  *handlers.SessionHandler
	Auth      *handlers.AuthHandler
	API       *handlers.APIHandler
	SEO       *handlers.SEOHandler
	Healthz   gin.HandlerFunc
	Metrics   *metrics.Metrics
	RateLimit gin.HandlerFunc
	// CORSOrigins applies to the /api group; "*" allows any origin.
	CORSOrigins []string
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// Ops
	r.GET("/healthz", h.Healthz)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	r.GET("/robots.txt", h.SEO.RobotsTxt)
	r.GET("/sitemap.xml", h.SEO.SitemapXML)

	// Public pages
	r.GET("/", h.Sessions.Home)
	r.GET("/sessions", h.Sessions.Index)
	r.GET("/sessions/:sessionId", h.Sessions.Detail)
	r.GET("/sessions/:sessionId/questions/:questionId", h.Sessions.Thread)

	// Auth
	r.GET("/signup", h.Auth.ShowRegister)
	r.POST("/signup", h.RateLimit, h.Auth.Register)
	r.GET("/login", h.Auth.ShowLogin)
	r.POST("/login", h.RateLimit, h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)
	r.GET("/auth/google/login", h.Auth.GoogleLogin)
	r.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// Signed-in only
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/sessions/new", h.Sessions.ShowNew)
		authorized.POST("/sessions/new", h.RateLimit, h.Sessions.Create)
		authorized.POST("/sessions/:sessionId", h.RateLimit, h.Sessions.Action)
		authorized.POST("/sessions/:sessionId/questions/:questionId", h.RateLimit, h.Sessions.CreateComment)
	}

	// JSON read views
	api := r.Group("/api")
	api.Use(cors.New(corsConfig(h.CORSOrigins)))
	{
		api.GET("/sessions", h.API.ListSessions)
		api.GET("/sessions/:sessionId", h.API.GetSession)
		api.GET("/sessions/:sessionId/questions/:questionId", h.API.GetQuestion)
		api.GET("/questions/:questionId/comments", h.API.ListComments)
	}

	r.NoRoute(handlers.NotFound)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
