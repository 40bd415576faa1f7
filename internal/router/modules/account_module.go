package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/user-accounts/internal/interface/http"
	"github.com/oksasatya/user-accounts/internal/interface/middleware"
)

// AccountModule wires the account handlers into routes:
// GET /users, GET /users/:id, POST /users, PUT /users/:id, DELETE /users/:id
type AccountModule struct {
	Handler *handlers.AccountHandler
	Redis   *redis.Client
}

func NewAccountModule(h *handlers.AccountHandler, rdb *redis.Client) *AccountModule {
	return &AccountModule{Handler: h, Redis: rdb}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	// 60 writes/min per IP; reads are not limited
	users.Use(middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), middleware.OnlyWrites()))
	{
		users.GET("", m.Handler.List)
		users.GET("/:id", m.Handler.Get)
		users.POST("", m.Handler.Create)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
	}
}
