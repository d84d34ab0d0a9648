// Package client is the Go counterpart of the browser frontend: the upload
// flow against the inference and record services, and the chat widget state
// machine.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// BackendClient talks to the record service. Authenticated calls carry the
// bearer token captured at login.
type BackendClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewBackendClient(baseURL string) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a bearer token obtained outside of Login.
func (c *BackendClient) SetToken(token string) {
	c.token = token
}

// ImageInfo is a stored record as the listing endpoint returns it.
type ImageInfo struct {
	ID         int64           `json:"id"`
	Filename   string          `json:"filename"`
	UploadDate time.Time       `json:"uploadDate"`
	URL        string          `json:"url"`
	Analysis   json.RawMessage `json:"analysis,omitempty"`
}

// Login authenticates and keeps the returned token for later calls.
func (c *BackendClient) Login(ctx context.Context, email string, password string) error {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "application/json", bytes.NewReader(payload), http.StatusOK, &result); err != nil {
		return err
	}
	if !result.Success || result.Data.Token == "" {
		return fmt.Errorf("login failed: %s", result.Message)
	}
	c.token = result.Data.Token
	return nil
}

// UploadImage stores the file and returns the created record.
func (c *BackendClient) UploadImage(ctx context.Context, filename string, image io.Reader) (*ImageInfo, error) {
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

	var result struct {
		Message string    `json:"message"`
		Image   ImageInfo `json:"image"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload", writer.FormDataContentType(), &body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result.Image, nil
}

// RecordPrediction attaches a prediction payload to a stored record.
func (c *BackendClient) RecordPrediction(ctx context.Context, imageID int64, prediction any) error {
	payload, err := json.Marshal(map[string]any{
		"imageId":    imageID,
		"prediction": prediction,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/predict", "application/json", bytes.NewReader(payload), http.StatusOK, nil)
}

// Images returns the caller's records, newest first.
func (c *BackendClient) Images(ctx context.Context) ([]ImageInfo, error) {
	var result struct {
		Success bool        `json:"success"`
		Count   int         `json:"count"`
		Data    []ImageInfo `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/images", "", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *BackendClient) do(ctx context.Context, method string, endpoint string, contentType string, body io.Reader, wantStatus int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}
