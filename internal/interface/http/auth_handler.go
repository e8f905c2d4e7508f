package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quizhub/internal/application"
	"github.com/oksasatya/quizhub/internal/domain/entity"
	"github.com/oksasatya/quizhub/pkg/helpers"
	"github.com/oksasatya/quizhub/pkg/response"
	"github.com/oksasatya/quizhub/pkg/validation"
)

// AuthHandler exposes the account lifecycle endpoints. All failures surface
// as JSON messages; none crash the process.
type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type otpConfirmRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type passwordResetConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,otp"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidEmail):
			response.Error[any](c, http.StatusBadRequest, "invalid email", nil)
		case errors.Is(err, application.ErrDuplicateEmail):
			response.Error[any](c, http.StatusConflict, "account already exists", nil)
		default:
			h.Logger.WithError(err).Error("signup failed")
			response.Error[any](c, http.StatusInternalServerError, "signup failed", nil)
		}
		return
	}

	if res.OTPIssued {
		response.Success(c, http.StatusCreated, gin.H{
			"role":         res.Role,
			"otp_required": true,
		}, "verification code sent, confirm to finish signup", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"role":         res.Role,
		"otp_required": false,
	}, "account created, please log in", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	if res.OTPRequired {
		response.Success(c, http.StatusOK, gin.H{"otp_required": true}, "verification code sent", nil)
		return
	}

	h.Cookies.SetPair(c, res.Tokens.AccessToken, res.Tokens.AccessTokenExpiry, res.Tokens.RefreshToken, res.Tokens.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, sessionBody(res.User), "login successful", tokenMeta(res.Tokens))
}

// SignupOTPConfirm POST /api/auth/signup/otp/confirm
// Consumes the post-signup challenge; the caller is NOT logged in afterwards.
func (h *AuthHandler) SignupOTPConfirm(c *gin.Context) {
	var req otpConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ConfirmSignupOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		h.writeOTPError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "verified, please log in", nil)
}

// LoginOTPConfirm POST /api/auth/login/otp/confirm
// Consumes the login challenge and establishes the session.
func (h *AuthHandler) LoginOTPConfirm(c *gin.Context) {
	var req otpConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.ConfirmLoginOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.writeOTPError(c, err)
		return
	}

	h.Cookies.SetPair(c, res.Tokens.AccessToken, res.Tokens.AccessTokenExpiry, res.Tokens.RefreshToken, res.Tokens.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, sessionBody(res.User), "login successful", tokenMeta(res.Tokens))
}

// PasswordResetRequest POST /api/auth/password/forgot
// Always answers 200 so the endpoint cannot be used to probe which emails exist.
func (h *AuthHandler) PasswordResetRequest(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("password reset request failed")
		response.Error[any](c, http.StatusInternalServerError, "reset request failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a reset code was sent", nil)
}

// PasswordResetConfirm POST /api/auth/password/reset
func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	var req passwordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.writeOTPError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated, please log in", nil)
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", tokenMeta(pair))
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *AuthHandler) writeOTPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrOTPExpired):
		response.Error[any](c, http.StatusUnauthorized, "code expired, request a new one", nil)
	case errors.Is(err, application.ErrTooManyAttempts):
		response.Error[any](c, http.StatusUnauthorized, "too many attempts, request a new code", nil)
	case errors.Is(err, application.ErrWrongOTP):
		response.Error[any](c, http.StatusUnauthorized, "wrong code", nil)
	default:
		h.Logger.WithError(err).Error("otp confirm failed")
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
	}
}

func sessionBody(u *entity.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	}
}

func tokenMeta(pair application.TokenPair) map[string]any {
	return map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	}
}
