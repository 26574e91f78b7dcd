package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satriajagad/portfolio-backend/internal/interface/middleware"
	"github.com/satriajagad/portfolio-backend/pkg/response"
	"github.com/satriajagad/portfolio-backend/pkg/validation"
)

type updatePasswordRequest struct {
	CurrentPassword    string `json:"current_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required,pwd"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

// UpdatePassword handles PUT /password/update (authenticated).
func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "please fill all details", validation.ToDetails(err))
		return
	}
	err := h.Svc.UpdatePassword(
		c.Request.Context(),
		c.GetString(middleware.CtxAccountIDKey),
		req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated successfully")
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword handles POST /password/forgot. A failed email delivery
// rolls the freshly issued token back before the 500 is returned.
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "email sent to "+req.Email+" successfully")
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ResetPassword handles PUT /password/reset/:token. A consumed token is
// indistinguishable from an expired or unknown one.
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondWithSession(c, http.StatusOK, a, "password reset successfully")
}
