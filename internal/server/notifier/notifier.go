// Package notifier delivers short-lived verification codes to an email
// address. The outcome is boolean: either the relay accepted the message or
// the send failed. There is no delivery-receipt tracking.
package notifier

import "context"

type Notifier interface {
	// SendCode delivers the code to the address, returning an error wrapping
	// common.ErrorDelivery if the relay rejects or the send fails.
	SendCode(ctx context.Context, email, code string) error
}
