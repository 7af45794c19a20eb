package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gridmesh/authcore/internal/auth"
)

// NewRouter assembles the gin engine. Token verification runs on every
// request; requests with a missing or bad token proceed anonymously and the
// per-route guards decide what anonymous callers may do.
func NewRouter(h *Handlers, verifier auth.Verifier, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowCredentials = true
	r.Use(cors.New(corsCfg))

	r.Use(auth.Middleware(verifier))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ag := r.Group("/auth")
	{
		ag.POST("/register", h.register)
		ag.POST("/login", h.login)
		ag.POST("/refresh", h.refresh)
		ag.POST("/logout", h.logout)
		ag.POST("/logout-all", auth.RequireAuth(), h.logoutAll)
		ag.GET("/me", h.me)
	}

	return r
}
