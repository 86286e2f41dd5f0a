package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"

	"bilingual-lms/pkg/config"
	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/logger"
)

//go:embed templates/*.html
var templates embed.FS

var notificationTmpl = template.Must(template.ParseFS(templates, "templates/notification.html"))

type NotificationData struct {
	TitleAr   string
	TitleEn   string
	MessageAr string
	MessageEn string
	Link      string
}

// RenderNotification renders the Arabic block first, then the English one.
func RenderNotification(data NotificationData) (string, error) {
	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render notification email: %w", err)
	}
	return buf.String(), nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	host     string
	addr     string
	user     string
	password string
	from     string
	log      *logger.Logger
	send     sendFunc
}

func NewSender(cfg *config.Config, log *logger.Logger) *Sender {
	return &Sender{
		host:     cfg.SMTPHost,
		addr:     cfg.SMTPAddr,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		log:      log.With("service", "EmailSender"),
		send:     smtp.SendMail,
	}
}

// Enabled reports whether an SMTP server is configured.
func (s *Sender) Enabled() bool {
	return s.addr != ""
}

func (s *Sender) Send(to []string, subject, html string) error {
	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	return s.send(s.addr, auth, s.from, to, message(s.from, to, subject, html))
}

// Deliver is a kfka.Handler that mails one notification event.
func (s *Sender) Deliver(_ context.Context, e kfka.Event) error {
	if e.Email == "" {
		s.log.Warn("notification event without email", "notification_id", e.NotificationID, "user_id", e.UserID)
		return nil
	}
	html, err := RenderNotification(NotificationData{
		TitleAr:   e.TitleAr,
		TitleEn:   e.TitleEn,
		MessageAr: e.MessageAr,
		MessageEn: e.MessageEn,
	})
	if err != nil {
		return err
	}
	if err := s.Send([]string{e.Email}, Subject(e.TitleAr, e.TitleEn), html); err != nil {
		return fmt.Errorf("send notification %d to %s: %w", e.NotificationID, e.Email, err)
	}
	s.log.Info("notification email sent", "notification_id", e.NotificationID, "to", e.Email)
	return nil
}

func Subject(ar, en string) string {
	switch {
	case ar == "":
		return en
	case en == "":
		return ar
	default:
		return ar + " | " + en
	}
}

func message(from string, to []string, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}
