package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var newPostTmpl = template.Must(template.New("new_post").Parse(`<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 600px; margin: 0 auto; background: #f9fafc; border-radius: 12px; overflow: hidden;">
  <div style="background: #007bff; color: #fff; padding: 24px; text-align: center;">
    <div style="font-size: 2rem; font-weight: bold; letter-spacing: 2px;">INKWELL</div>
    <div style="font-size: 1.1rem;">Your Creative Blogging Destination</div>
    <h1 style="margin: 12px 0 0 0; font-size: 1.5rem;">Hot Off the Press!</h1>
  </div>
  <div style="padding: 28px 24px;">
    <h2 style="color: #222; margin-top: 0;">{{.Title}}</h2>
    <p style="color: #444; font-size: 1.1rem;">{{.Excerpt}}</p>
    <div style="margin-bottom: 18px; color: #007bff; font-weight: 500;">Reading time: {{.ReadingTime}} min</div>
    <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background: #007bff; color: #fff; text-decoration: none; border-radius: 6px; font-weight: bold;">Read the post</a>
    <p style="margin-top: 32px; color: #888; font-size: 0.95rem;">Thank you for being a valued subscriber!</p>
  </div>
  <div style="background: #f1f3f6; color: #555; text-align: center; padding: 16px; font-size: 0.9rem;">&copy; {{.Year}} INKWELL. All rights reserved.</div>
</div>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Reset your Inkwell password</h2>
  <p>Hi {{.Name}}, someone asked to reset the password for your account.</p>
  <p><a href="{{.Link}}">Choose a new password</a></p>
  <p style="color: #888;">The link expires in {{.Expires}}. If you did not ask for this, ignore this email.</p>
</div>`))

type newPostData struct {
	Title       string
	Excerpt     string
	ReadingTime int
	Link        string
	Year        int
}

type resetData struct {
	Name    string
	Link    string
	Expires string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
