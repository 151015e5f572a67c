// Package remote uploads processed submissions to the collection server.
package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/roboco-io/md2wechat/internal/pipeline"
)

// submissionsPath is appended to the configured base URL.
const submissionsPath = "/api/submissions"

// Config contains remote client configuration.
type Config struct {
	// BaseURL of the collection server, e.g. https://submit.example.com.
	BaseURL string

	// Token for Bearer authorization. Empty means no Authorization header.
	Token string

	// Timeout for the whole upload. Zero selects a default suited to
	// payloads of a few megabytes.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification. Meant for
	// self-hosted servers with self-signed certificates.
	InsecureSkipVerify bool
}

// Client talks to the submission API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Manifest is the metadata sent alongside the payload archive.
type Manifest struct {
	ID        string        `json:"id"`
	Folder    string        `json:"folder"`
	Timestamp string        `json:"timestamp"`
	Meta      pipeline.Meta `json:"meta"`
	Converted int           `json:"converted"`
	Failed    int           `json:"failed"`
}

// SubmitResponse is the server's JSON reply.
type SubmitResponse struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// New creates a remote client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote base URL not configured")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	if cfg.InsecureSkipVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  client,
	}, nil
}

// Submit uploads a processed submission. The payload archive is built from
// the result's folder on disk.
func (c *Client) Submit(ctx context.Context, res *pipeline.Result) (*SubmitResponse, error) {
	payload, err := BuildPayload(res)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	manifest := Manifest{
		ID:        res.ID,
		Folder:    res.Folder,
		Timestamp: res.Timestamp,
		Meta:      res.Meta,
		Converted: len(res.Converted),
		Failed:    len(res.Failed),
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	// Create multipart form
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("manifest", string(manifestJSON)); err != nil {
		return nil, fmt.Errorf("failed to write manifest field: %w", err)
	}

	part, err := writer.CreateFormFile("payload_zip", "payload.zip")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to write payload: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+submissionsPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode server response: %w", err)
	}
	return &apiResp, nil
}
