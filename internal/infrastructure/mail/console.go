package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleSender logs codes instead of delivering them. Used in development
// when no SMTP host is configured.
type ConsoleSender struct {
	log zerolog.Logger
}

func NewConsoleSender(log zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (c *ConsoleSender) SendOTP(_ context.Context, email, code string) error {
	c.log.Info().Str("email", email).Str("code", code).Msg("otp email (console)")
	return nil
}
