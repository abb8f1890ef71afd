package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"venuebook/pkg/kafka"
	"venuebook/pkg/model"

	"github.com/mailersend/mailersend-go"
)

type Mailer interface {
	Send(ctx context.Context, n model.Notification) (string, error)
}

type MailerSendMailer struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
	timeout   time.Duration
}

func NewMailerSendMailer(apiKey, fromName, fromEmail string, timeout time.Duration) *MailerSendMailer {
	return &MailerSendMailer{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		timeout:   timeout,
	}
}

// Send returns the provider message id. Errors are classified so the
// consumer only retries failures that can succeed on a later attempt.
func (m *MailerSendMailer) Send(ctx context.Context, n model.Notification) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: n.Recipient}})
	message.SetSubject(n.Subject)
	message.SetText(n.Body)
	message.SetTags([]string{n.EventType})

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		status := 0
		if res != nil && res.Response != nil {
			status = res.StatusCode
		}
		return "", classifySendError(status, err)
	}
	return res.Header.Get("X-Message-Id"), nil
}

func classifySendError(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return kafka.NewTransientError(fmt.Sprintf("mail provider returned %d", status), err)
	case status >= http.StatusBadRequest:
		return kafka.NewPermanentError(fmt.Sprintf("mail provider rejected message (%d)", status), err)
	default:
		return fmt.Errorf("failed to send email: %w", err)
	}
}
