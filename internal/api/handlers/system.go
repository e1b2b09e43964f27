package handlers

import (
	"context"
	"time"

	"github.com/okieraised/faceid-gateway/internal/reqctx"
	"github.com/okieraised/faceid-gateway/internal/response"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the liveness/readiness surface: §6's /api/health plus
// /healthz and /readyz for container orchestration.
type SystemHandler struct {
	triton *triton.Client
}

func NewSystemHandler(tritonClient *triton.Client) *SystemHandler {
	return &SystemHandler{triton: tritonClient}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(200, response.OK(reqctx.RequestID(c), gin.H{"status": "ok"}))
}

func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (h *SystemHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	live, err := h.triton.ServerLive(ctx)
	if err != nil || !live.Live {
		c.JSON(503, gin.H{"status": "not ready", "reason": "inference server not live"})
		return
	}
	ready, err := h.triton.ServerReady(ctx)
	if err != nil || !ready.Ready {
		c.JSON(503, gin.H{"status": "not ready", "reason": "inference server not ready"})
		return
	}
	c.JSON(200, gin.H{"status": "ready"})
}
