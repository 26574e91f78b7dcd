package entity

import (
	"time"
)

// AssetRef points at a binary asset held in object storage. ID is the stable
// storage object id used for deletion, URL is the public download location.
type AssetRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Account is the aggregate root for the portfolio owner's identity.
// PasswordHash holds a bcrypt digest; the plaintext is never persisted.
// ResetTokenHash/ResetTokenExpires are set together while a password reset
// is pending and cleared together when it is consumed or rolled back.
type Account struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	AboutMe      string
	PasswordHash string
	PortfolioURL string
	GithubURL    string
	TwitterURL   string
	LinkedInURL  string
	Avatar       AssetRef
	Resume       AssetRef

	ResetTokenHash    *string
	ResetTokenExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public returns the JSON-safe view of the account. Password and reset
// fields never leave the process.
func (a *Account) Public() map[string]any {
	return map[string]any{
		"id":            a.ID,
		"full_name":     a.FullName,
		"email":         a.Email,
		"phone":         a.Phone,
		"about_me":      a.AboutMe,
		"portfolio_url": a.PortfolioURL,
		"github_url":    a.GithubURL,
		"twitter_url":   a.TwitterURL,
		"linkedin_url":  a.LinkedInURL,
		"avatar":        a.Avatar,
		"resume":        a.Resume,
		"created_at":    a.CreatedAt,
		"updated_at":    a.UpdatedAt,
	}
}
