package ports

import "context"

// Mailer delivers verification codes. Implementations must be safe for
// concurrent use; the delivery pipeline fans out across workers.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}
