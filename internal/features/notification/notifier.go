package notification

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"unicode"

	"go-approvals/internal/config"

	"go.uber.org/zap"
)

// Notifier delivers messages on a best-effort basis. Delivery problems are
// logged, never returned: callers have already committed their state.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// NewNotifier sends e-mail when SMTP is configured and logs otherwise.
// Live subscribers on hub get every message too; hub may be nil.
func NewNotifier(cfg *config.Config, logger *zap.Logger, hub *Hub) Notifier {
	var primary Notifier = NewEmailNotifier(cfg, logger)
	if cfg.SMTPHost == "" {
		logger.Info("SMTP not configured, notifications are logged only")
		primary = &LogNotifier{logger: logger}
	}
	if hub == nil {
		return primary
	}
	return Multi(primary, hub)
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) {
	for _, r := range msg.Recipients {
		subject, _, err := Render(msg.Template, withRecipient(msg.Params, r.Username))
		if err != nil {
			n.logger.Error("render notification", zap.String("template", string(msg.Template)), zap.Error(err))
			return
		}
		n.logger.Info("notification",
			zap.String("template", string(msg.Template)),
			zap.String("recipient", r.Username),
			zap.String("subject", subject),
		)
	}
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailNotifier struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   SendFunc
	logger *zap.Logger
}

func NewEmailNotifier(cfg *config.Config, logger *zap.Logger) *EmailNotifier {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &EmailNotifier{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:   from,
		auth:   auth,
		send:   smtp.SendMail,
		logger: logger,
	}
}

// WithSender replaces the SMTP transport.
func (n *EmailNotifier) WithSender(send SendFunc) *EmailNotifier {
	n.send = send
	return n
}

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) {
	for _, r := range msg.Recipients {
		if strings.TrimSpace(r.Email) == "" {
			n.logger.Debug("recipient has no e-mail, skipping",
				zap.String("template", string(msg.Template)),
				zap.String("recipient", r.Username),
			)
			continue
		}

		subject, body, err := Render(msg.Template, withRecipient(msg.Params, r.Username))
		if err != nil {
			n.logger.Error("render notification", zap.String("template", string(msg.Template)), zap.Error(err))
			return
		}

		raw := []byte(fmt.Sprintf("From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"%s\r\n", headerValue(n.from), headerValue(r.Email), encodeSubject(subject), body))

		if err := n.send(n.addr, n.auth, n.from, []string{r.Email}, raw); err != nil {
			n.logger.Warn("send notification failed",
				zap.String("template", string(msg.Template)),
				zap.String("recipient", r.Username),
				zap.Error(err),
			)
			continue
		}
		n.logger.Info("notification sent",
			zap.String("template", string(msg.Template)),
			zap.String("recipient", r.Username),
		)
	}
}

// headerValue drops line breaks and other control characters so a value
// cannot start a new header.
func headerValue(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)
}

func encodeSubject(subject string) string {
	return mime.QEncoding.Encode("utf-8", headerValue(subject))
}

func withRecipient(params map[string]string, recipient string) map[string]string {
	out := make(map[string]string, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["recipient"] = recipient
	return out
}
