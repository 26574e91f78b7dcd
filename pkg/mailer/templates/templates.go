package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	"time"
)

// Data carries the fields notification templates render.
type Data struct {
	Name      string
	Email     string
	AppName   string
	Time      string
	IP        string
	UserAgent string
}

// ToMap converts Data to the map shape EmailJob.Data uses on the wire.
func ToMap(d Data) map[string]any {
	return map[string]any{
		"Name":      d.Name,
		"Email":     d.Email,
		"AppName":   d.AppName,
		"Time":      d.Time,
		"IP":        d.IP,
		"UserAgent": d.UserAgent,
	}
}

// FromMap rebuilds Data from a decoded job payload.
func FromMap(m map[string]any) Data {
	str := func(k string) string {
		if v, ok := m[k]; ok {
			return fmt.Sprintf("%v", v)
		}
		return ""
	}
	return Data{
		Name:      str("Name"),
		Email:     str("Email"),
		AppName:   str("AppName"),
		Time:      str("Time"),
		IP:        str("IP"),
		UserAgent: str("UserAgent"),
	}
}

// NowText formats a timestamp the way the emails display it.
func NowText(t time.Time) string {
	return t.UTC().Format("02 January 2006, 15:04 MST")
}

const baseHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>{{.Title}}</h2>
  <p>Hi {{.Name}},</p>
  {{.Body}}
  {{if .IP}}<p style="color:#777;font-size:13px;">Request from {{.IP}}{{if .UserAgent}} ({{.UserAgent}}){{end}}{{if .Time}} at {{.Time}}{{end}}.</p>{{end}}
  <p>— {{.AppName}}</p>
</body>
</html>`

var base = htmpl.Must(htmpl.New("base").Parse(baseHTML))

type rendered struct {
	Title string
	Name  string
	Body  htmpl.HTML
	IP    string
	UserAgent,
	Time, AppName string
}

func render(title string, body htmpl.HTML, d Data) (string, error) {
	var buf bytes.Buffer
	err := base.Execute(&buf, rendered{
		Title:     title,
		Name:      d.Name,
		Body:      body,
		IP:        d.IP,
		UserAgent: d.UserAgent,
		Time:      d.Time,
		AppName:   d.AppName,
	})
	return buf.String(), err
}

// Render builds subject, text and html bodies for a named template.
func Render(name string, d Data) (subject, text, html string, err error) {
	switch name {
	case "profile_updated":
		subject = "Your profile was updated"
		text = "Hi " + d.Name + ",\n\nYour dashboard profile was just updated. If this wasn't you, reset your password immediately.\n"
		html, err = render(subject, htmpl.HTML("<p>Your dashboard profile was just updated. If this wasn't you, reset your password immediately.</p>"), d)
	case "password_changed":
		subject = "Your password was changed"
		text = "Hi " + d.Name + ",\n\nYour dashboard password was just changed. If this wasn't you, use the forgot-password flow to regain access.\n"
		html, err = render(subject, htmpl.HTML("<p>Your dashboard password was just changed. If this wasn't you, use the forgot-password flow to regain access.</p>"), d)
	default:
		err = fmt.Errorf("unknown email template %q", name)
	}
	return subject, text, html, err
}

// ResetEmail builds the password recovery message around the reset link.
func ResetEmail(name, resetURL string, expiresIn time.Duration) (subject, text, html string) {
	subject = "Personal Portfolio Dashboard password recovery"
	text = fmt.Sprintf(
		"Hi %s,\n\nYour reset password link is:\n\n%s\n\nThe link expires in %s. If you have not requested this, please ignore it.\n",
		name, resetURL, expiresIn,
	)
	var buf bytes.Buffer
	_ = base.Execute(&buf, rendered{
		Title: subject,
		Name:  name,
		Body: htmpl.HTML(fmt.Sprintf(
			`<p>Click the link below to reset your dashboard password. It expires in %s.</p><p><a href="%s">%s</a></p><p>If you have not requested this, please ignore it.</p>`,
			expiresIn, htmpl.HTMLEscapeString(resetURL), htmpl.HTMLEscapeString(resetURL),
		)),
		AppName: "Personal Portfolio Dashboard",
	})
	return subject, text, buf.String()
}
