package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"newstracker/internal/config"
	"newstracker/internal/domain"
)

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     465,
		From:     "bot@example.com",
		FromName: "News Tracker",
	})

	msg := n.buildMessage(domain.Notification{
		Recipient: "a@x.com",
		Subject:   "🔔 test subject",
		HTMLBody:  "<div>body</div>",
	})

	for _, want := range []string{
		"From: News Tracker <bot@example.com>\r\n",
		"To: a@x.com\r\n",
		"Subject: 🔔 test subject\r\n",
		"Content-Type: text/html; charset=\"UTF-8\"\r\n",
		"<div>body</div>",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}

	if !strings.Contains(msg, "\r\n\r\n<div>") {
		t.Fatalf("missing blank line between headers and body:\n%s", msg)
	}
}

func TestSendMisconfiguredIsDeliveryFailed(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.MailConfig{})
	err := n.Send(context.Background(), domain.Notification{Recipient: "a@x.com"})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestSendWithoutRecipientIsDeliveryFailed(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.MailConfig{Host: "smtp.example.com", Port: 465, From: "bot@example.com"})
	err := n.Send(context.Background(), domain.Notification{})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}
