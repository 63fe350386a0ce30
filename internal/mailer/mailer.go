package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/typing-backend/internal/metrics"
)

const DefaultResendEndpoint = "https://api.resend.com/emails"

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// ResendMailer posts messages to the Resend HTTP API.
type ResendMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewResend(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		endpoint: DefaultResendEndpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint overrides the API URL.
func (r *ResendMailer) WithEndpoint(url string) *ResendMailer {
	r.endpoint = url
	return r
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (r *ResendMailer) Send(ctx context.Context, m Message) (err error) {
	defer func() { observe(err) }()

	body, err := json.Marshal(resendRequest{From: r.from, To: []string{m.To}, Subject: m.Subject, HTML: m.HTML})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// LogMailer only logs messages; used when no API key is configured.
type LogMailer struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *LogMailer { return &LogMailer{log: log} }

func (l *LogMailer) Send(_ context.Context, m Message) error {
	l.log.Info("email not delivered (no provider configured)", "to", m.To, "subject", m.Subject)
	observe(nil)
	return nil
}

func observe(err error) {
	if err != nil {
		metrics.MailSent.WithLabelValues("error").Inc()
		return
	}
	metrics.MailSent.WithLabelValues("ok").Inc()
}
