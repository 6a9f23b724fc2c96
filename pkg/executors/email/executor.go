// Package email provides the SMTP send executor.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/dukex/factotum/pkg/credentials"
	"github.com/dukex/factotum/pkg/protocol"
)

// Executor sends one email per invocation over SMTP. Credentials are
// loaded at construction time; without valid credentials no executor is
// built and nothing is ever sent.
type Executor struct {
	creds *credentials.SMTP
}

func NewExecutor(creds *credentials.SMTP) *Executor {
	return &Executor{creds: creds}
}

func (e *Executor) Execute(ctx context.Context, payload map[string]any, logger *slog.Logger) (*protocol.ExecutionResult, error) {
	to, _ := payload["to"].(string)
	subject, _ := payload["subject"].(string)
	body, _ := payload["body"].(string)

	if body == "" {
		body, _ = payload["description"].(string)
	}

	message := mail.NewMsg()

	err := message.From(e.creds.Address)
	if err != nil {
		return nil, protocol.MarkPermanent(fmt.Errorf("invalid sender address: %w", err))
	}

	err = message.To(to)
	if err != nil {
		return nil, protocol.MarkPermanent(fmt.Errorf("invalid recipient address: %w", err))
	}

	message.Subject(subject)
	message.SetMessageID()
	message.SetBodyString(mail.TypeTextPlain, body)

	options := []mail.Option{
		mail.WithPort(e.creds.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.creds.Address),
		mail.WithPassword(e.creds.Secret),
	}

	if e.creds.UseTLS {
		options = append(options, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		options = append(options, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(e.creds.Server, options...)
	if err != nil {
		return nil, protocol.MarkPermanent(fmt.Errorf("failed to build smtp client: %w", err))
	}

	err = client.DialAndSendWithContext(ctx, message)
	if err != nil {
		// Delivery failures are retried; the server may just be away.
		return nil, protocol.MarkTransient(fmt.Errorf("failed to send email: %w", err))
	}

	logger.Info("Sent email", "to", to, "subject", subject)

	return &protocol.ExecutionResult{
		Reference: message.GetMessageID(),
		Details: map[string]any{
			"to":      to,
			"subject": subject,
		},
	}, nil
}
