package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satriajagad/portfolio-backend/internal/container"
	handlers "github.com/satriajagad/portfolio-backend/internal/interface/http"
	"github.com/satriajagad/portfolio-backend/internal/interface/middleware"
	"github.com/satriajagad/portfolio-backend/pkg/helpers"
)

// PasswordModule wires the password lifecycle routes.
// Public: POST /api/password/forgot, PUT /api/password/reset/:token
// Protected: PUT /api/password/update
type PasswordModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewPasswordModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *PasswordModule {
	return &PasswordModule{Handler: h, JWT: jwt}
}

func (m *PasswordModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	forgotLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/password/forgot", forgotLimiter, m.Handler.ForgotPassword)
	rg.PUT("/password/reset/:token", resetLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByAccountID(), nil))
	{
		auth.PUT("/password/update", m.Handler.UpdatePassword)
	}
}
