// Package notify delivers best-effort operator notifications. The default
// implementation posts to a Slack incoming webhook and degrades to a noop
// when no webhook is configured, so callers never branch on the transport.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Notifier delivers a plain-text message to an operator channel. Delivery is
// best-effort: the caller logs failures and never retries through this
// interface.
type Notifier interface {
	// Enabled reports whether a real notification endpoint is configured.
	Enabled() bool
	Notify(ctx context.Context, text string) error
}

// NewService returns a Slack webhook notifier, or a noop implementation when
// webhookURL is empty.
func NewService(webhookURL string) Notifier {
	url := strings.TrimSpace(webhookURL)
	if url == "" {
		return noopNotifier{}
	}
	return &slackNotifier{
		webhookURL: url,
		httpClient: newHttpClient(),
	}
}

type noopNotifier struct{}

func (noopNotifier) Enabled() bool { return false }

func (noopNotifier) Notify(context.Context, string) error { return nil }

type slackNotifier struct {
	webhookURL string
	httpClient http.Client
}

func (s *slackNotifier) Enabled() bool { return true }

type slackPayload struct {
	Text string `json:"text"`
}

func (s *slackNotifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func newHttpClient() http.Client {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		zap.L().Warn("Failed to enable HTTP/2 for webhook client", zap.Error(err))
	}

	return http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}
}
