package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"campuspulse/internal/upstream"
)

// Client sends transactional email through the Brevo HTTP API. Outbound
// sends share a token-bucket limiter so a large user batch cannot trip the
// provider's rate limit.
type Client struct {
	baseURL     string
	apiKey      string
	senderEmail string
	senderName  string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func NewClient(baseURL, apiKey, senderEmail, senderName string, ratePerSec float64, burst int) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

type party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

// Send delivers one HTML email. Failures are returned, never panicked; the
// jobs treat them as a per-user skip.
func (c *Client) Send(ctx context.Context, toEmail, subject, html string) error {
	if c.apiKey == "" || c.senderEmail == "" {
		return fmt.Errorf("mail sender is not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limiter: %w", err)
	}

	payload := sendRequest{
		Sender:      party{Name: c.senderName, Email: c.senderEmail},
		To:          []party{{Name: toEmail, Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v3/smtp/email", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &upstream.Error{Service: "mail", Status: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
