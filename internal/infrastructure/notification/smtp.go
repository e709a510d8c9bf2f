package notification

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/infrastructure/config"
)

// SMTPSender delivers EMAIL notifications through an SMTP relay
type SMTPSender struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a sender from the notification config. Auth is only
// used when a user is configured.
func NewSMTPSender(cfg config.NotificationConfig) *SMTPSender {
	s := &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:     cfg.SMTPHost,
		from:     cfg.SMTPFrom,
		sendMail: smtp.SendMail,
	}
	if cfg.SMTPUser != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return s
}

// Channel returns EMAIL
func (s *SMTPSender) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send writes the message to the relay
func (s *SMTPSender) Send(ctx context.Context, n *notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, n.Recipient, n.Subject, n.Body, n.ID, time.Now())
	if err := s.sendMail(s.addr, s.auth, s.from, []string{n.Recipient}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", s.host, err)
	}
	return nil
}

// buildMessage renders a plain-text UTF-8 message with encoded headers
func buildMessage(from, to, subject, body string, id uuid.UUID, at time.Time) []byte {
	var b bytes.Buffer
	writeHeader(&b, "From", from)
	writeHeader(&b, "To", to)
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", subject))
	writeHeader(&b, "Date", at.Format(time.RFC1123Z))
	writeHeader(&b, "Message-ID", "<"+id.String()+"@monartisan>")
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", `text/plain; charset="utf-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, name, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	b.WriteString(name + ": " + value + "\r\n")
}

var _ notification.Sender = (*SMTPSender)(nil)
