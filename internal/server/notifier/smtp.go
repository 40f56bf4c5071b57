package notifier

import (
	"context"
	"fmt"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/wneessen/go-mail"
)

// SMTPNotifier sends verification codes through an authenticated STARTTLS
// SMTP relay.
type SMTPNotifier struct {
	host   string
	port   int
	user   string
	pass   string
	sender string
}

func NewSMTPNotifier(host string, port int, user, pass, sender string) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, user: user, pass: pass, sender: sender}
}

func (n *SMTPNotifier) SendCode(ctx context.Context, email, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.sender); err != nil {
		return fmt.Errorf("%w: invalid sender: %v", common.ErrorDelivery, err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("%w: invalid recipient: %v", common.ErrorDelivery, err)
	}
	msg.Subject("Your verification code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("Your verification code is: %s\nIt is valid for 1 minute.", code))

	client, err := mail.NewClient(n.host,
		mail.WithPort(n.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.user),
		mail.WithPassword(n.pass),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorDelivery, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorDelivery, err)
	}
	return nil
}
