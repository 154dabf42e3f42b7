package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/interface/middleware"
)

// UserModule wires the registration endpoint.
// Public: POST /api/v1/users
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client // nil disables rate limiting
	// Limit is the number of registrations allowed per IP per minute.
	Limit         int
	BypassPrivate bool
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, limit int, bypassPrivate bool) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, Limit: limit, BypassPrivate: bypassPrivate}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.BypassPrivate {
		allow = middleware.AllowPrivateIP()
	}
	limiter := middleware.RateLimit(m.Redis, middleware.Limit{Max: m.Limit, Window: time.Minute, Allow: allow})

	v1 := rg.Group("/v1")
	v1.POST("/users", limiter, m.Handler.Create)
}
