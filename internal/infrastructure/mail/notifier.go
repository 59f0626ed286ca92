// Package mail delivers notifications over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"newstracker/internal/config"
	"newstracker/internal/domain"
	"newstracker/internal/ports"
)

// Notifier sends assembled notifications as HTML email.
type Notifier struct {
	cfg config.MailConfig
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the SMTP settings.
func NewNotifier(cfg config.MailConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Send delivers one notification. Failures are wrapped as
// DeliveryFailed so the pipeline counts them without aborting.
func (n *Notifier) Send(ctx context.Context, msg domain.Notification) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		return fmt.Errorf("mail notifier misconfigured: %w", domain.ErrDeliveryFailed)
	}
	if msg.Recipient == "" {
		return fmt.Errorf("notification has no recipient: %w", domain.ErrDeliveryFailed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := n.buildMessage(msg)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var err error
	switch n.cfg.TLSMode {
	case "tls":
		err = n.sendWithTLS(addr, auth, msg.Recipient, payload)
	default: // "none"
		err = smtp.SendMail(addr, auth, n.cfg.From, []string{msg.Recipient}, []byte(payload))
	}
	if err != nil {
		return fmt.Errorf("send to %s: %v: %w", msg.Recipient, err, domain.ErrDeliveryFailed)
	}

	return nil
}

func (n *Notifier) buildMessage(msg domain.Notification) string {
	from := n.cfg.From
	if n.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.From)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.Recipient))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")
	return b.String()
}

// sendWithTLS uses implicit TLS (port 465), the mode Gmail requires.
func (n *Notifier) sendWithTLS(addr string, auth smtp.Auth, recipient, payload string) error {
	tlsConfig := &tls.Config{
		ServerName: n.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write([]byte(payload)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}
