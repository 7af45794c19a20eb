package device

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/logging"
)

// Handlers exposes the device fleet over REST. Every route runs behind the
// shared verification filter; mutating routes additionally require the admin
// role.
type Handlers struct {
	svc    *Service
	logger logging.Logger
}

// NewHandlers constructs the handler set.
func NewHandlers(svc *Service, logger logging.Logger) *Handlers {
	return &Handlers{svc: svc, logger: logger.With("module", "device")}
}

// NewRouter assembles the resource service's gin engine.
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

	dg := r.Group("/devices", auth.RequireAuth())
	{
		dg.GET("", h.list)
		dg.GET("/:id", h.get)

		admin := dg.Group("", auth.RequireRole(auth.RoleAdmin))
		{
			admin.POST("", h.create)
			admin.PUT("/:id", h.update)
			admin.POST("/:id/assign", h.assignOwner)
			admin.DELETE("/:id", h.remove)
		}
	}

	return r
}

type createDeviceRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	MaxHourlyKWH float64 `json:"max_hourly_kwh"`
	OwnerID      string  `json:"owner_id" binding:"required"`
}

type updateDeviceRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	MaxHourlyKWH float64 `json:"max_hourly_kwh"`
}

type assignRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

func deviceJSON(d *Device) gin.H {
	return gin.H{
		"id":             d.ID,
		"name":           d.Name,
		"description":    d.Description,
		"max_hourly_kwh": d.MaxHourlyKWH,
		"owner_id":       d.OwnerID,
		"created_at":     d.CreatedAt,
	}
}

func (h *Handlers) list(c *gin.Context) {
	devices, err := h.svc.List(c.Request.Context(), auth.PrincipalFromContext(c.Request.Context()))
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceJSON(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), auth.PrincipalFromContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceJSON(d))
}

func (h *Handlers) create(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.svc.Create(c.Request.Context(), auth.PrincipalFromContext(c.Request.Context()), &Device{
		Name:         req.Name,
		Description:  req.Description,
		MaxHourlyKWH: req.MaxHourlyKWH,
		OwnerID:      req.OwnerID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "device created", "device_id", d.ID, "owner_id", d.OwnerID)
	c.JSON(http.StatusCreated, deviceJSON(d))
}

func (h *Handlers) update(c *gin.Context) {
	var req updateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.svc.Update(c.Request.Context(), auth.PrincipalFromContext(c.Request.Context()), &Device{
		ID:           c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		MaxHourlyKWH: req.MaxHourlyKWH,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceJSON(d))
}

func (h *Handlers) assignOwner(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.AssignOwner(c.Request.Context(), auth.PrincipalFromContext(c.Request.Context()),
		c.Param("id"), req.OwnerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) remove(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), auth.PrincipalFromContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
	case errors.Is(err, common.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, common.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
