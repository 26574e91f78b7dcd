package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satriajagad/portfolio-backend/internal/container"
	handlers "github.com/satriajagad/portfolio-backend/internal/interface/http"
	"github.com/satriajagad/portfolio-backend/internal/interface/middleware"
	"github.com/satriajagad/portfolio-backend/pkg/helpers"
)

// AccountModule wires the account HTTP handlers into routes.
// Public: POST /api/register, POST /api/login, GET /api/portfolio/me
// Protected: GET /api/logout, GET /api/me, PUT /api/update/me
type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/portfolio/me", m.Handler.Portfolio)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByAccountID(), nil))
	{
		auth.GET("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/update/me", m.Handler.UpdateMe)
	}
}
