package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satriajagad/portfolio-backend/internal/application"
	"github.com/satriajagad/portfolio-backend/internal/domain/entity"
	"github.com/satriajagad/portfolio-backend/internal/interface/middleware"
	"github.com/satriajagad/portfolio-backend/pkg/helpers"
	"github.com/satriajagad/portfolio-backend/pkg/response"
	"github.com/satriajagad/portfolio-backend/pkg/validation"
)

type AccountHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAccountHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// statusFor maps service errors onto the error taxonomy: validation 400,
// authentication 400/401, not found 404, upstream 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrPasswordMismatch):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrIncorrectPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrInvalidResetToken):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, application.ErrAccountNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, application.ErrEmailDelivery):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "something went wrong"
	}
}

func (h *AccountHandler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError && h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Error(c, status, msg, nil)
}

func fileUpload(fh *multipart.FileHeader) (*application.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &application.FileUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

type registerRequest struct {
	FullName     string `form:"full_name" binding:"required"`
	Email        string `form:"email" binding:"required,email"`
	Phone        string `form:"phone" binding:"required"`
	AboutMe      string `form:"about_me" binding:"required"`
	Password     string `form:"password" binding:"required,pwd"`
	PortfolioURL string `form:"portfolio_url" binding:"required,url"`
	GithubURL    string `form:"github_url" binding:"omitempty,url"`
	TwitterURL   string `form:"twitter_url" binding:"omitempty,url"`
	LinkedInURL  string `form:"linkedin_url" binding:"omitempty,url"`
}

// Register handles POST /register: multipart form with profile fields plus
// the required avatar and resume files.
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	avatarFH, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar and resume are required", nil)
		return
	}
	resumeFH, err := c.FormFile("resume")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar and resume are required", nil)
		return
	}
	avatar, err := fileUpload(avatarFH)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read avatar upload", nil)
		return
	}
	resume, err := fileUpload(resumeFH)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read resume upload", nil)
		return
	}

	a, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		AboutMe:      req.AboutMe,
		Password:     req.Password,
		PortfolioURL: req.PortfolioURL,
		GithubURL:    req.GithubURL,
		TwitterURL:   req.TwitterURL,
		LinkedInURL:  req.LinkedInURL,
		Avatar:       *avatar,
		Resume:       *resume,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondWithSession(c, http.StatusCreated, a, "registered successfully")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "email and password are required", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondWithSession(c, http.StatusOK, a, "logged in successfully")
}

// Logout handles GET /logout: purely a client-side cookie invalidation, no
// server-side session exists to revoke.
func (h *AccountHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out")
}

// Me handles GET /me.
func (h *AccountHandler) Me(c *gin.Context) {
	a, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a.Public(), "profile")
}

// Portfolio handles GET /portfolio/me: the public profile of the
// configured portfolio owner.
func (h *AccountHandler) Portfolio(c *gin.Context) {
	a, err := h.Svc.GetPortfolioProfile(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a.Public(), "portfolio profile")
}

type updateProfileRequest struct {
	FullName     string `form:"full_name"`
	Email        string `form:"email" binding:"omitempty,email"`
	Phone        string `form:"phone"`
	AboutMe      string `form:"about_me"`
	PortfolioURL string `form:"portfolio_url" binding:"omitempty,url"`
	GithubURL    string `form:"github_url" binding:"omitempty,url"`
	TwitterURL   string `form:"twitter_url" binding:"omitempty,url"`
	LinkedInURL  string `form:"linkedin_url" binding:"omitempty,url"`
}

// UpdateMe handles PUT /update/me: multipart form, every field optional,
// avatar/resume files replace the stored assets when present.
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.UpdateProfileInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		AboutMe:      req.AboutMe,
		PortfolioURL: req.PortfolioURL,
		GithubURL:    req.GithubURL,
		TwitterURL:   req.TwitterURL,
		LinkedInURL:  req.LinkedInURL,
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		up, err := fileUpload(fh)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "could not read avatar upload", nil)
			return
		}
		in.Avatar = up
	}
	if fh, err := c.FormFile("resume"); err == nil {
		up, err := fileUpload(fh)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "could not read resume upload", nil)
			return
		}
		in.Resume = up
	}

	a, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a.Public(), "profile updated successfully")
}

// respondWithSession issues a session token, sets the HTTP-only cookie and
// writes the account payload.
func (h *AccountHandler) respondWithSession(c *gin.Context, status int, a *entity.Account, message string) {
	token, exp, err := h.Svc.JWT.Generate(a.ID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("session token generation failed")
		}
		response.Error(c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	h.Cookies.SetSession(c, token, exp)
	data := a.Public()
	data["token"] = token
	response.Success(c, status, data, message)
}
