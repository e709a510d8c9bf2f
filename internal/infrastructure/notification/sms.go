package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/infrastructure/config"
)

const smsTimeout = 10 * time.Second

// HTTPSMSSender delivers SMS notifications through an HTTP gateway that
// accepts {"from", "to", "text"} with a bearer API key
type HTTPSMSSender struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

type smsPayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// NewHTTPSMSSender creates a sender from the notification config
func NewHTTPSMSSender(cfg config.NotificationConfig) *HTTPSMSSender {
	return &HTTPSMSSender{
		endpoint: cfg.SMSEndpoint,
		apiKey:   cfg.SMSAPIKey,
		sender:   cfg.SMSSender,
		client:   &http.Client{Timeout: smsTimeout},
	}
}

// Channel returns SMS
func (s *HTTPSMSSender) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send posts the message to the gateway. Any non-2xx answer is a failure.
func (s *HTTPSMSSender) Send(ctx context.Context, n *notification.Notification) error {
	body, err := json.Marshal(smsPayload{
		From:      s.sender,
		To:        n.Recipient,
		Text:      n.Body,
		Reference: n.ID.String(),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ notification.Sender = (*HTTPSMSSender)(nil)
