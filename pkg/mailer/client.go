package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	pkgerrors "github.com/gardenaqua/gardenaqua-backend/pkg/errors"
	"github.com/gardenaqua/gardenaqua-backend/pkg/logger"
)

const (
	defaultBaseURL = "https://api.resend.com"
	sendTimeout    = 10 * time.Second
)

var (
	errAPIKeyRequired = errors.New("mail api key is required")
	errFromRequired   = errors.New("mail from address is required")
	errLoggerRequired = errors.New("mail logger is required")
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender is the outbound email surface consumed by notification dispatchers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client delivers transactional email through the Resend HTTP API with
// centralized auth, logging, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	replyTo    string
	logger     *logger.Logger
}

// NewClient initializes the mail wrapper and validates the credentials.
func NewClient(cfg config.MailConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	from := strings.TrimSpace(cfg.FromEmail)
	if from == "" {
		return nil, errFromRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: sendTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		replyTo:    strings.TrimSpace(cfg.ReplyTo),
		logger:     logg,
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type apiErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send posts the message to the /emails endpoint.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "email has no recipients")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email has no subject")
	}

	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = c.replyTo
	}
	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		ReplyTo: replyTo,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building email request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.log(ctx, "request", "send_email", map[string]any{
		"to_count": len(msg.To),
		"subject":  msg.Subject,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "send_email", map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "posting email")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log(ctx, "error", "send_email", map[string]any{"status": resp.StatusCode})
		return c.mapAPIError(resp.StatusCode, body)
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err == nil && out.ID != "" {
		c.log(ctx, "response", "send_email", map[string]any{"email_id": out.ID})
	}
	return nil
}

func (c *Client) mapAPIError(status int, body []byte) error {
	message := "mail provider rejected the request"
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		message = apiErr.Message
	}

	err := pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("mail send failed: %s", message))
	return err.WithDetails(map[string]any{"status": status})
}

func (c *Client) log(ctx context.Context, phase string, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{"provider": "resend", "operation": operation, "phase": phase}
	for k, v := range fields {
		merged[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, merged), "mail "+phase)
}
