package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/mergestat/timediff"
	mail "github.com/xhit/go-simple-mail/v2"
)

var _ auth.Notifier = (*NotificationService)(nil)

// NotificationService sends an email whenever the keepsake is opened.
type NotificationService struct {
	config    *config.EmailConfig
	serverURL string
	send      func(to, subject, body string) error
}

// LoginNotification is the data rendered into the login email.
type LoginNotification struct {
	Username string
	At       time.Time
	Ago      string
	URL      string
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig, serverURL string) *NotificationService {
	n := &NotificationService{
		config:    cfg,
		serverURL: serverURL,
	}
	n.send = n.sendEmail
	return n
}

// NotifyLogin sends a login notification. It does nothing if email is disabled.
func (n *NotificationService) NotifyLogin(ctx context.Context, user auth.User, at time.Time) error {
	if n.config == nil || !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping notification")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := n.generateEmailBody(LoginNotification{
		Username: user.Username,
		At:       at,
		Ago:      timediff.TimeDiff(at),
		URL:      n.serverURL,
	})
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	subject := fmt.Sprintf("[Keepsake] %s signed in", user.Username)
	return n.send(n.config.To, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

func (n *NotificationService) generateEmailBody(notification LoginNotification) (string, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "login.html", notification); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	switch {
	case n.config.UseSSL:
		server.Encryption = mail.EncryptionSSLTLS
	case n.config.UseTLS:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Keepsake"
	}

	email := mail.NewMSG()
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}
	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Login notification sent", "to", to)
	return nil
}
