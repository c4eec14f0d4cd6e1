package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// Sender delivers transactional emails.
type Sender interface {
	SendPasswordResetOTP(ctx context.Context, to, otp string, ttl time.Duration) error
}

// Client sends email through SMTP. With no username configured it only logs.
type Client struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *slog.Logger
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewClient creates a new email client.
func NewClient(host, port, username, password, from string, logger *slog.Logger) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// Options represents a single outgoing message.
type Options struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Enabled reports whether SMTP credentials were configured.
func (c *Client) Enabled() bool {
	return c.username != ""
}

// Send wraps the HTML body in the marketplace layout and delivers it.
func (c *Client) Send(ctx context.Context, opts Options) error {
	if !c.Enabled() {
		c.logger.InfoContext(ctx, "email delivery disabled, message dropped",
			slog.String("to", opts.To),
			slog.String("subject", opts.Subject),
		)
		return nil
	}

	message := buildMessage(c.from, opts.To, opts.Subject, wrapHTML(opts.HTML), opts.Text)
	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%s", c.host, c.port)

	if err := c.send(addr, auth, c.from, []string{opts.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendPasswordResetOTP emails a one-time password reset code.
func (c *Client) SendPasswordResetOTP(ctx context.Context, to, otp string, ttl time.Duration) error {
	minutes := int(ttl.Minutes())
	html := fmt.Sprintf(`
		<p>Hello,</p>
		<p>Use the code below to reset your password:</p>
		<p style="text-align: center; font-size: 28px; letter-spacing: 6px; margin: 24px 0;"><strong>%s</strong></p>
		<p>The code expires in %d minutes. If you did not request a reset, you can ignore this email.</p>
	`, template.HTMLEscapeString(otp), minutes)

	return c.Send(ctx, Options{
		To:      to,
		Subject: "Your password reset code",
		HTML:    html,
		Text:    fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", otp, minutes),
	})
}

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f9f9f9;">
    <div style="padding: 32px;">
        <div style="max-width: 600px; margin: auto; background: #fff; border-radius: 8px; padding: 32px;">
            <h2 style="color: #2a7ae2; text-align: center; margin: 0 0 24px;">Course Marketplace</h2>
            <div style="font-size: 16px; color: #333;">{{.Content}}</div>
            <div style="margin-top: 32px; text-align: center; color: #aaa; font-size: 12px;">&copy; {{.Year}} Course Marketplace</div>
        </div>
    </div>
</body>
</html>`))

func wrapHTML(content string) string {
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Content": template.HTML(content),
		"Year":    time.Now().Year(),
	}
	if err := layout.Execute(&buf, data); err != nil {
		return content
	}
	return buf.String()
}

func buildMessage(from, to, subject, html, text string) string {
	if from == "" {
		from = "noreply@example.com"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n\r\n")

	if text != "" {
		b.WriteString("--boundary42\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(text + "\r\n")
	}

	b.WriteString("--boundary42\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html + "\r\n")
	b.WriteString("--boundary42--\r\n")
	return b.String()
}
