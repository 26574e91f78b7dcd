package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriajagad/portfolio-backend/config"
	"github.com/satriajagad/portfolio-backend/internal/application"
	"github.com/satriajagad/portfolio-backend/internal/domain/entity"
	"github.com/satriajagad/portfolio-backend/internal/domain/repository"
	handlers "github.com/satriajagad/portfolio-backend/internal/interface/http"
	"github.com/satriajagad/portfolio-backend/internal/interface/middleware"
	"github.com/satriajagad/portfolio-backend/pkg/helpers"
	"github.com/satriajagad/portfolio-backend/pkg/storage"
	"github.com/satriajagad/portfolio-backend/pkg/validation"
)

var setupOnce sync.Once

func testSetup() {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})
}

// ---- fakes ----

type memRepo struct {
	byID   map[string]*entity.Account
	nextID int
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*entity.Account{}}
}

func (r *memRepo) Create(_ context.Context, a *entity.Account) error {
	r.nextID++
	a.ID = "acct-" + strconv.Itoa(r.nextID)
	r.byID[a.ID] = a
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	if a, ok := r.byID[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Update(_ context.Context, a *entity.Account) error {
	r.byID[a.ID] = a
	return nil
}

func (r *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (r *memRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	a, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ResetTokenHash = &tokenHash
	a.ResetTokenExpires = &expires
	return nil
}

func (r *memRepo) ClearResetToken(_ context.Context, id string) error {
	if a, ok := r.byID[id]; ok {
		a.ResetTokenHash = nil
		a.ResetTokenExpires = nil
	}
	return nil
}

func (r *memRepo) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (*entity.Account, error) {
	for _, a := range r.byID {
		if a.ResetTokenHash != nil && *a.ResetTokenHash == tokenHash && a.ResetTokenExpires.After(now) {
			a.PasswordHash = passwordHash
			a.ResetTokenHash = nil
			a.ResetTokenExpires = nil
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memStorage struct{ seq int }

func (s *memStorage) Upload(_ context.Context, r io.Reader, folder, _, _ string) (storage.Asset, error) {
	_, _ = io.Copy(io.Discard, r)
	s.seq++
	id := fmt.Sprintf("%s/obj-%d", folder, s.seq)
	return storage.Asset{ID: id, URL: "https://cdn.test/" + id}, nil
}

func (s *memStorage) Destroy(context.Context, string) error { return nil }

type memMailer struct{ texts []string }

func (m *memMailer) Send(_ context.Context, _, _, text, _ string) error {
	m.texts = append(m.texts, text)
	return nil
}

// ---- wiring ----

type testApp struct {
	engine *gin.Engine
	repo   *memRepo
	mail   *memMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	testSetup()

	repo := newMemRepo()
	mail := &memMailer{}
	cfg := &config.Config{
		AppName:         "portfolio-backend-test",
		AvatarFolder:    "avatars",
		ResumeFolder:    "resumes",
		ResetTokenTTL:   15 * time.Minute,
		DashboardURL:    "http://localhost:5173",
		MailSendEnabled: true,
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwt := helpers.NewJWTManager("handler-test-secret", time.Hour)
	svc := application.NewService(repo, jwt, &memStorage{}, mail, nil, logger, cfg)
	h := handlers.NewAccountHandler(svc, logger, "", false)

	engine := gin.New()
	api := engine.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/portfolio/me", h.Portfolio)
	api.POST("/password/forgot", h.ForgotPassword)
	api.PUT("/password/reset/:token", h.ResetPassword)

	authed := api.Group("", middleware.Auth(jwt))
	authed.GET("/logout", h.Logout)
	authed.GET("/me", h.Me)
	authed.PUT("/update/me", h.UpdateMe)
	authed.PUT("/password/update", h.UpdatePassword)

	return &testApp{engine: engine, repo: repo, mail: mail}
}

func (app *testApp) seedAccount(t *testing.T, email, password string) *entity.Account {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	a := &entity.Account{
		FullName:     "Ada Lovelace",
		Email:        email,
		Phone:        "+123456789",
		AboutMe:      "I build things",
		PasswordHash: hash,
		PortfolioURL: "https://ada.dev",
		Avatar:       entity.AssetRef{ID: "avatars/seed", URL: "https://cdn.test/avatars/seed"},
		Resume:       entity.AssetRef{ID: "resumes/seed", URL: "https://cdn.test/resumes/seed"},
	}
	require.NoError(t, app.repo.Create(context.Background(), a))
	return a
}

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]any    `json:"data"`
	Error   map[string]string `json:"error"`
}

func (app *testApp) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, filename := range files {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func registerFields(email string) map[string]string {
	return map[string]string{
		"full_name":     "Ada Lovelace",
		"email":         email,
		"phone":         "+123456789",
		"about_me":      "I build things",
		"password":      "longenough1",
		"portfolio_url": "https://ada.dev",
	}
}

// ---- registration ----

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := multipartRequest(t, http.MethodPost, "/api/register", registerFields("a@x.com"),
		map[string]string{"avatar": "me.png", "resume": "cv.pdf"})
	w, env := app.do(t, req)

	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	assert.True(t, env.Success)
	assert.Equal(t, "a@x.com", env.Data["email"])
	assert.NotEmpty(t, env.Data["token"])

	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.NotEmpty(t, c.Value)

	// sensitive fields never leave the server
	for _, k := range []string{"password", "password_hash", "reset_token_hash"} {
		assert.NotContains(t, env.Data, k)
	}
}

func TestRegisterMissingFiles(t *testing.T) {
	app := newTestApp(t)

	req := multipartRequest(t, http.MethodPost, "/api/register", registerFields("a@x.com"), nil)
	w, env := app.do(t, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "avatar and resume are required", env.Message)
}

func TestRegisterShortPassword(t *testing.T) {
	app := newTestApp(t)

	fields := registerFields("a@x.com")
	fields["password"] = "short"
	req := multipartRequest(t, http.MethodPost, "/api/register", fields,
		map[string]string{"avatar": "me.png", "resume": "cv.pdf"})
	w, env := app.do(t, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "password")
}

// ---- sessions ----

func TestLoginSetsSessionCookie(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	w, env := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "longenough1"}))

	require.Equal(t, http.StatusOK, w.Code, env.Message)
	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.Greater(t, c.MaxAge, 0)
	assert.Equal(t, env.Data["token"], c.Value)
}

func TestLoginFailuresUniform(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	w1, env1 := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "wrongwrong"}))
	w2, env2 := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "nobody@x.com", "password": "longenough1"}))

	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, env1.Message, env2.Message, "wrong password and unknown email must be indistinguishable")
}

func TestMeRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	w, _ = app.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeWithSession(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	lw, _ := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "longenough1"}))
	c := sessionCookie(t, lw)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(c)
	w, env := app.do(t, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@x.com", env.Data["email"])
	assert.Equal(t, "Ada Lovelace", env.Data["full_name"])
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	lw, _ := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "longenough1"}))
	c := sessionCookie(t, lw)

	req := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	req.AddCookie(c)
	w, env := app.do(t, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	cleared := sessionCookie(t, w)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

// ---- password reset flow ----

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	w, _ := app.do(t, jsonRequest(http.MethodPost, "/api/password/forgot",
		gin.H{"email": "a@x.com"}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, app.mail.texts, 1)

	token := tokenFromResetEmail(t, app.mail.texts[0])

	w, env := app.do(t, jsonRequest(http.MethodPut, "/api/password/reset/"+token,
		gin.H{"password": "newpass123", "confirm_password": "newpass123"}))
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	sessionCookie(t, w)

	// old credential dead, new one live
	w, _ = app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "longenough1"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "newpass123"}))
	assert.Equal(t, http.StatusOK, w.Code)

	// consumed token cannot be replayed
	w, _ = app.do(t, jsonRequest(http.MethodPut, "/api/password/reset/"+token,
		gin.H{"password": "another123", "confirm_password": "another123"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPasswordUnknownEmailEndpoint(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, jsonRequest(http.MethodPost, "/api/password/forgot",
		gin.H{"email": "nobody@x.com"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func tokenFromResetEmail(t *testing.T, text string) string {
	t.Helper()
	const marker = "/password/reset/"
	i := strings.Index(text, marker)
	require.GreaterOrEqual(t, i, 0, "reset link not found in email body")
	rest := text[i+len(marker):]
	if j := strings.IndexAny(rest, " \n\t"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// ---- password update ----

func TestUpdatePasswordEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.seedAccount(t, "a@x.com", "longenough1")

	lw, _ := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "longenough1"}))
	c := sessionCookie(t, lw)

	put := func(body gin.H) (*httptest.ResponseRecorder, envelope) {
		req := jsonRequest(http.MethodPut, "/api/password/update", body)
		req.AddCookie(c)
		return app.do(t, req)
	}

	w, _ := put(gin.H{"current_password": "wrongwrong", "new_password": "newpass123", "confirm_new_password": "newpass123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = put(gin.H{"current_password": "longenough1", "new_password": "newpass123", "confirm_new_password": "different1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := put(gin.H{"current_password": "longenough1", "new_password": "newpass123", "confirm_new_password": "newpass123"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, _ = app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "newpass123"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

// ---- profile update ----

func TestUpdateMeEndpoint(t *testing.T) {
	app := newTestApp(t)
	a := app.seedAccount(t, "a@x.com", "longenough1")

	lw, _ := app.do(t, jsonRequest(http.MethodPost, "/api/login",
		gin.H{"email": "a@x.com", "password": "longenough1"}))
	c := sessionCookie(t, lw)

	req := multipartRequest(t, http.MethodPut, "/api/update/me",
		map[string]string{"about_me": "Updated bio"},
		map[string]string{"avatar": "new.png"})
	req.AddCookie(c)
	w, env := app.do(t, req)

	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, "Updated bio", env.Data["about_me"])

	stored := app.repo.byID[a.ID]
	assert.Equal(t, "Updated bio", stored.AboutMe)
	assert.NotEqual(t, "avatars/seed", stored.Avatar.ID)
	assert.Equal(t, "resumes/seed", stored.Resume.ID)
}

// ---- public portfolio profile ----

func TestPortfolioEndpoint(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/api/portfolio/me", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "no owner configured")
}
