package service

import (
	"context"

	"github.com/wayplanhq/wayplan/pkg/slogx"
)

// Mailer delivers password-reset tokens out of band. The production
// deployment plugs a real provider in; everything else uses LogMailer.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes reset deliveries to the log instead of sending mail.
// The token itself is only emitted at debug level.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	log := slogx.FromContext(ctx)
	log.Info("password reset token issued", "email", email)
	log.Debug("password reset token", "email", email, "token", token)
	return nil
}
