package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "token"

// CookieManager writes and clears the HTTP-only session cookie. SameSite is
// None because the dashboard front-end is served from a different origin.
type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetSession stores the session token with a Max-Age matching its expiry.
func (m *CookieManager) SetSession(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(sessionCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// Clear expires the session cookie immediately.
func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(sessionCookie, "", -1, "/", m.Domain, m.Secure, true)
}

// SessionToken reads the session cookie, empty when absent.
func SessionToken(c *gin.Context) string {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return token
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
