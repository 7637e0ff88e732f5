package pool

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"
)

func Register(rg *gin.RouterGroup, svc *poolsvc.Service) {
	rg.POST("/", createPool(svc))
	rg.GET("/", listPools(svc))
	rg.GET("/:id", getPool(svc))
	rg.DELETE("/:id", deletePool(svc))
	rg.POST("/:id/evaluate", evaluatePool(svc))
	rg.POST("/:id/reset", resetPool(svc))
}

// RegisterPreview mounts the stateless one-shot evaluation.
func RegisterPreview(rg *gin.RouterGroup, svc *poolsvc.Service) {
	rg.POST("", previewEligibility(svc))
}

type createPoolReq struct {
	Name     string                 `json:"name" binding:"required"`
	Quotas   eligibility.QuotaTable `json:"quotas"`
	Cooldown eligibility.Value      `json:"cooldown"`
}

func createPool(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPoolReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Create(c.Request.Context(), req.Name, req.Quotas, req.Cooldown)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func listPools(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainpool.ListFilters
		if name := c.Query("name"); name != "" {
			filters.Name = &name
		}

		pools, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		out := make([]domainpool.Snapshot, 0, len(pools))
		for i := range pools {
			out = append(out, pools[i].Snapshot())
		}
		c.JSON(http.StatusOK, out)
	}
}

func getPool(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		p, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deletePool(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		if err := svc.Delete(c.Request.Context(), id); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func evaluatePool(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var in poolsvc.EvaluateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		out, err := svc.Evaluate(c.Request.Context(), id, in)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func resetPool(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		p, err := svc.Reset(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p.Snapshot())
	}
}

func previewEligibility(svc *poolsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in poolsvc.EvaluateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eligible, err := svc.Preview(c.Request.Context(), in)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"eligible": eligible})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainpool.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, eligibility.ErrCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
