package happy

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Mailer delivers a composed email
type Mailer interface {
	Send(ctx context.Context, to string, email *Email) error
}

// Sender is the From identity and the link placed under every email
type Sender struct {
	Name   string
	Email  string
	AppURL string
}

// GmailConfig holds the OAuth client and refresh token of the sending account
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// GmailMailer sends through the Gmail API as the account that owns the
// refresh token
type GmailMailer struct {
	svc    *gmail.Service
	sender Sender
}

func NewGmailMailer(ctx context.Context, cfg GmailConfig, sender Sender, opts ...option.ClientOption) (*GmailMailer, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	httpClient := oauth2.NewClient(ctx, tokenSource)

	svc, err := gmail.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, sender: sender}, nil
}

func (m *GmailMailer) Send(ctx context.Context, to string, email *Email) error {
	raw, err := buildMessage(m.sender, to, email)
	if err != nil {
		return err
	}
	_, err = m.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

// buildMessage renders a multipart/alternative message with a plain-text
// and an HTML part
func buildMessage(sender Sender, to string, email *Email) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	from := mail.Address{Name: sender.Name, Address: sender.Email}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())

	text := email.Body
	if sender.AppURL != "" {
		text += "\n\n---\nOpen DoIt: " + sender.AppURL
	}
	if err := writePart(w, "text/plain", text); err != nil {
		return nil, err
	}
	if err := writePart(w, "text/html", renderHTML(email.Body, sender.AppURL)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType, content string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+`; charset="UTF-8"`)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	_, err = part.Write([]byte(strings.ReplaceAll(content, "\n", "\r\n")))
	return err
}

func renderHTML(body, appURL string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 500px; margin: 0 auto; padding: 20px; color: #333;">`)
	b.WriteString(`<div style="white-space: pre-line; font-size: 15px; line-height: 1.6;">`)
	b.WriteString(html.EscapeString(body))
	b.WriteString(`</div>`)
	if appURL != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 24px; padding-top: 16px; border-top: 1px solid #eee;"><a href="%s" style="display: inline-block; padding: 10px 24px; background: #F59E0B; color: #fff; text-decoration: none; border-radius: 8px; font-weight: 600;">Open DoIt</a></div>`,
			html.EscapeString(appURL))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// LogMailer logs emails instead of sending them
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to string, email *Email) error {
	m.log.Info("email not sent, no mailer configured",
		zap.String("to", to),
		zap.String("subject", email.Subject),
		zap.Int("body_bytes", len(email.Body)),
	)
	return nil
}
