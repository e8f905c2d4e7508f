package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/quizhub/internal/container"
	handlers "github.com/oksasatya/quizhub/internal/interface/http"
	"github.com/oksasatya/quizhub/internal/interface/middleware"
	"github.com/oksasatya/quizhub/pkg/helpers"
)

// AuthModule wires the account lifecycle routes.
// Public: signup, login, both OTP confirms, refresh.
// Protected: logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	signupLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	otpConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	forgotLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/signup/otp/confirm", otpConfirmLimiter, m.Handler.SignupOTPConfirm)
	rg.POST("/auth/login/otp/confirm", otpConfirmLimiter, m.Handler.LoginOTPConfirm)
	rg.POST("/auth/password/forgot", forgotLimiter, m.Handler.PasswordResetRequest)
	rg.POST("/auth/password/reset", otpConfirmLimiter, m.Handler.PasswordResetConfirm)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
