// Package inference is the HTTP client for the external classification and
// chat collaborator. The collaborator is opaque; this package only transports
// its contracts.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TBXark/confstore"
)

// Prediction is the minimal documented shape of a classification result.
type Prediction struct {
	ClassName   string  `json:"class_name"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// ChatReply is the collaborator's conversational response shape.
type ChatReply struct {
	Response       string   `json:"response"`
	AdditionalInfo []string `json:"additional_info"`
}

// Config configures the client. Loadable from a JSON file or URL via
// LoadConfig.
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// LoadConfig reads a Config from path, which may be a local file or an
// http(s) URL.
func LoadConfig(path string) (*Config, error) {
	return confstore.Load[Config](path)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *Config) *Client {
	timeout := 30 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict submits the image as multipart field "file" and returns the
// classification.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (*Prediction, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var result Prediction
	if err := c.post(ctx, "/predict", writer.FormDataContentType(), &body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UseSample asks for the canned sample classification.
func (c *Client) UseSample(ctx context.Context) (*Prediction, error) {
	var result Prediction
	if err := c.post(ctx, "/use-sample", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat sends a basic-mode message; condition may be empty.
func (c *Client) Chat(ctx context.Context, message string, condition string) (*ChatReply, error) {
	return c.converse(ctx, "/chat", "message", message, condition)
}

// AskDermatologist sends an advanced-mode question; condition may be empty.
func (c *Client) AskDermatologist(ctx context.Context, question string, condition string) (*ChatReply, error) {
	return c.converse(ctx, "/ask-dermatologist", "question", question, condition)
}

// converse posts a form with the user's text under the endpoint's field name.
func (c *Client) converse(ctx context.Context, endpoint string, field string, text string, condition string) (*ChatReply, error) {
	form := url.Values{}
	form.Set(field, text)
	if condition != "" {
		form.Set("condition", condition)
	}
	var result ChatReply
	if err := c.post(ctx, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, endpoint string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference service request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode inference response: %w", err)
	}
	return nil
}
