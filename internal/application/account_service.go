package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/satriajagad/portfolio-backend/config"
	"github.com/satriajagad/portfolio-backend/internal/domain/entity"
	repo "github.com/satriajagad/portfolio-backend/internal/domain/repository"
	"github.com/satriajagad/portfolio-backend/pkg/helpers"
	"github.com/satriajagad/portfolio-backend/pkg/mailer"
	tpl "github.com/satriajagad/portfolio-backend/pkg/mailer/templates"
	"github.com/satriajagad/portfolio-backend/pkg/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrIncorrectPassword  = errors.New("incorrect current password")
	ErrPasswordMismatch   = errors.New("password and confirm password do not match")
	ErrInvalidResetToken  = errors.New("reset password token is invalid or has been expired")
	ErrEmailDelivery      = errors.New("could not send email")
)

// AssetStorage is the object-storage collaborator: upload returns a stable
// {id, url} reference, destroy is best-effort by id.
type AssetStorage interface {
	Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (storage.Asset, error)
	Destroy(ctx context.Context, id string) error
}

// Mailer delivers a single email synchronously. Implemented by
// mailer.Mailgun; tests swap in fakes.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// FileUpload is one incoming multipart file.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// Service orchestrates registration, authentication, profile and password
// management for the single portfolio account collection.
type Service struct {
	Repo    repo.AccountRepository
	JWT     *helpers.JWTManager
	Storage AssetStorage
	Mailer  Mailer
	Notify  *helpers.RabbitPublisher // nil disables notification emails
	Logger  *logrus.Logger
	Cfg     *config.Config
}

func NewService(r repo.AccountRepository, jwt *helpers.JWTManager, st AssetStorage, m Mailer, notify *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *Service {
	return &Service{Repo: r, JWT: jwt, Storage: st, Mailer: m, Notify: notify, Logger: logger, Cfg: cfg}
}

type RegisterInput struct {
	FullName     string
	Email        string
	Phone        string
	AboutMe      string
	Password     string
	PortfolioURL string
	GithubURL    string
	TwitterURL   string
	LinkedInURL  string
	Avatar       FileUpload
	Resume       FileUpload
}

// Register uploads both required assets, hashes the password and creates
// the account. Nothing is persisted unless both uploads succeeded.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	if existing, err := s.Repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	avatar, err := s.Storage.Upload(ctx, in.Avatar.Reader, s.Cfg.AvatarFolder, in.Avatar.Filename, in.Avatar.ContentType)
	if err != nil {
		return nil, err
	}
	resume, err := s.Storage.Upload(ctx, in.Resume.Reader, s.Cfg.ResumeFolder, in.Resume.Filename, in.Resume.ContentType)
	if err != nil {
		// the avatar already landed in the bucket; clean it up best-effort
		s.destroyAsset(ctx, avatar.ID)
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &entity.Account{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		AboutMe:      in.AboutMe,
		PasswordHash: hash,
		PortfolioURL: in.PortfolioURL,
		GithubURL:    in.GithubURL,
		TwitterURL:   in.TwitterURL,
		LinkedInURL:  in.LinkedInURL,
		Avatar:       entity.AssetRef{ID: avatar.ID, URL: avatar.URL},
		Resume:       entity.AssetRef{ID: resume.ID, URL: resume.URL},
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login verifies credentials. Unknown email and wrong password fail with
// the same error so callers cannot tell them apart.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.Account, error) {
	a, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CheckPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*entity.Account, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// GetPortfolioProfile returns the configured portfolio owner's account for
// the public site.
func (s *Service) GetPortfolioProfile(ctx context.Context) (*entity.Account, error) {
	if s.Cfg.PortfolioOwnerEmail == "" {
		return nil, ErrAccountNotFound
	}
	a, err := s.Repo.GetByEmail(ctx, s.Cfg.PortfolioOwnerEmail)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

type UpdateProfileInput struct {
	FullName     string
	Email        string
	Phone        string
	AboutMe      string
	PortfolioURL string
	GithubURL    string
	TwitterURL   string
	LinkedInURL  string
	Avatar       *FileUpload
	Resume       *FileUpload
}

// UpdateProfile replaces only the supplied fields. A replaced asset's old
// object is destroyed best-effort after the new upload succeeded; destroy
// failure never blocks the update.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*entity.Account, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}

	if in.FullName != "" {
		a.FullName = in.FullName
	}
	if in.Email != "" {
		a.Email = in.Email
	}
	if in.Phone != "" {
		a.Phone = in.Phone
	}
	if in.AboutMe != "" {
		a.AboutMe = in.AboutMe
	}
	if in.PortfolioURL != "" {
		a.PortfolioURL = in.PortfolioURL
	}
	if in.GithubURL != "" {
		a.GithubURL = in.GithubURL
	}
	if in.TwitterURL != "" {
		a.TwitterURL = in.TwitterURL
	}
	if in.LinkedInURL != "" {
		a.LinkedInURL = in.LinkedInURL
	}

	if in.Avatar != nil {
		ref, err := s.replaceAsset(ctx, a.Avatar, *in.Avatar, s.Cfg.AvatarFolder)
		if err != nil {
			return nil, err
		}
		a.Avatar = ref
	}
	if in.Resume != nil {
		ref, err := s.replaceAsset(ctx, a.Resume, *in.Resume, s.Cfg.ResumeFolder)
		if err != nil {
			return nil, err
		}
		a.Resume = ref
	}

	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.notify(ctx, a, mailer.TemplateProfileUpdated)
	return a, nil
}

func (s *Service) replaceAsset(ctx context.Context, old entity.AssetRef, up FileUpload, folder string) (entity.AssetRef, error) {
	uploaded, err := s.Storage.Upload(ctx, up.Reader, folder, up.Filename, up.ContentType)
	if err != nil {
		return entity.AssetRef{}, err
	}
	s.destroyAsset(ctx, old.ID)
	return entity.AssetRef{ID: uploaded.ID, URL: uploaded.URL}, nil
}

func (s *Service) destroyAsset(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.Storage.Destroy(ctx, id); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("asset_id", id).Warn("failed to destroy stored asset")
	}
}

// UpdatePassword verifies the current password and persists a freshly
// hashed one. Hash-if-changed is explicit here: an unchanged password
// returns early without rehashing or writing.
func (s *Service) UpdatePassword(ctx context.Context, id, current, newPassword, confirm string) error {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil || a == nil {
		return ErrAccountNotFound
	}
	if !helpers.CheckPassword(a.PasswordHash, current) {
		return ErrIncorrectPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if helpers.CheckPassword(a.PasswordHash, newPassword) {
		// same password; nothing to persist
		return nil
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, a.ID, hash); err != nil {
		return err
	}
	s.notify(ctx, a, mailer.TemplatePasswordChanged)
	return nil
}

// ForgotPassword moves the account's reset state to pending and mails the
// plaintext token. A reissue overwrites any previous pending token, so only
// the newest one stays valid. If the email cannot be delivered the pending
// fields are rolled back to keep the account idle.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	a, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || a == nil {
		return ErrAccountNotFound
	}

	plain, hash, err := NewResetToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(s.Cfg.ResetTokenTTL)
	if err := s.Repo.SetResetToken(ctx, a.ID, hash, expires); err != nil {
		return err
	}

	if !s.Cfg.MailSendEnabled {
		if s.Logger != nil {
			s.Logger.WithField("account_id", a.ID).Warn("mail sending disabled; reset token issued but not delivered")
		}
		return nil
	}

	resetURL := s.Cfg.ResetPasswordURL(plain)
	subject, text, html := tpl.ResetEmail(a.FullName, resetURL, s.Cfg.ResetTokenTTL)
	if err := s.Mailer.Send(ctx, a.Email, subject, text, html); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("reset email delivery failed, rolling back token")
		}
		if rbErr := s.Repo.ClearResetToken(ctx, a.ID); rbErr != nil && s.Logger != nil {
			s.Logger.WithError(rbErr).WithField("account_id", a.ID).Error("reset token rollback failed")
		}
		return ErrEmailDelivery
	}
	return nil
}

// ResetPassword consumes a pending reset token. Hash match and expiry are
// checked in one conditional write, which also makes the token single-use
// under concurrent duplicate attempts.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) (*entity.Account, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a, err := s.Repo.ConsumeResetToken(ctx, HashResetToken(token), time.Now(), hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}
	s.notify(ctx, a, mailer.TemplatePasswordChanged)
	return a, nil
}

// notify enqueues a best-effort notification email; failures are logged
// and never surfaced.
func (s *Service) notify(ctx context.Context, a *entity.Account, template string) {
	if s.Notify == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       a.Email,
		Template: template,
		Data: tpl.ToMap(tpl.Data{
			Name:    a.FullName,
			Email:   a.Email,
			AppName: s.Cfg.AppName,
			Time:    tpl.NowText(time.Now()),
		}),
	}
	if err := s.Notify.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue notification email")
	}
}
