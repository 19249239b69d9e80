package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/payetonkawa/catalog-service/internal/platform/config"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

const (
	MailSubject    = "Inscription à l'API"
	MailBody       = "<p>Veuillez scanner le code QR ci-dessous pour vous connecter à l'API.</p>"
	AttachmentName = "qrcode.png"

	defaultMaxRetries = 3
	defaultBaseDelay  = 500 * time.Millisecond
)

// Dialer sends fully built messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewSMTPDialer(cfg config.SMTPConfig) Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

// MailNotifier e-mails the token to the account owner as a QR code attachment.
type MailNotifier struct {
	dialer     Dialer
	from       string
	qr         QREncoder
	maxRetries uint64
	baseDelay  time.Duration
}

type MailOption func(*MailNotifier)

// WithRetry sets how many times a failed send is retried and the first
// backoff delay, which doubles on every retry.
func WithRetry(maxRetries uint64, baseDelay time.Duration) MailOption {
	return func(n *MailNotifier) {
		n.maxRetries = maxRetries
		n.baseDelay = baseDelay
	}
}

func NewMailNotifier(dialer Dialer, from string, qr QREncoder, opts ...MailOption) *MailNotifier {
	n := &MailNotifier{
		dialer:     dialer,
		from:       from,
		qr:         qr,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *MailNotifier) Notify(ctx context.Context, accountID, token string) error {
	png, err := n.qr.Encode(token)
	if err != nil {
		return fmt.Errorf("could not render QR code: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", accountID)
	msg.SetHeader("Subject", MailSubject)
	msg.SetBody("text/html", MailBody)
	msg.Attach(AttachmentName,
		gomail.SetHeader(map[string][]string{"Content-Type": {"image/png"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		}),
	)

	backoff := retry.WithMaxRetries(n.maxRetries, retry.NewExponential(n.baseDelay))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := n.dialer.DialAndSend(msg); err != nil {
			logger.Warn("MailNotifier: send failed", "attempt", attempt, "account_id", accountID, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not send registration mail after %d attempts: %w", attempt, err)
	}

	logger.Info("registration mail sent", "account_id", accountID)
	return nil
}
