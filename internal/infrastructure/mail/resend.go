package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

var ErrMailDisabled = errors.New("mail delivery is not configured")

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// ResendMailer отправляет письма через Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	if apiKey == "" {
		return &ResendMailer{from: from}
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send возвращает id письма, присвоенный провайдером
func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	if m.client == nil {
		return "", ErrMailDisabled
	}
	if len(msg.To) == 0 {
		return "", errors.New("mail has no recipients")
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}
