package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-accounts/pkg/response"
)

// Pinger is implemented by the account stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{Store: store}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		response.Send(c, response.Error[any](c, http.StatusServiceUnavailable, "store unreachable", err.Error()))
		return
	}
	response.Send(c, response.Success[any](c, http.StatusOK, map[string]any{"status": "ok"}, "healthy", nil))
}
