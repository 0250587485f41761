package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrAssetUpload is returned when the image host rejects or fails an upload
var ErrAssetUpload = errors.New("image upload failed")

// AssetClient uploads product images to a public image host (Imgur API v3)
// and returns their public URL
type AssetClient struct {
	uploadURL  string
	clientID   string
	httpClient *http.Client
}

// assetResponse is the envelope the image host answers with. data.error is a
// string for most failures and an object for some, so it stays raw.
type assetResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		Link  string          `json:"link"`
		Error json.RawMessage `json:"error,omitempty"`
	} `json:"data"`
}

// NewAssetClient creates a client for the upload endpoint at uploadURL
func NewAssetClient(uploadURL, clientID string) *AssetClient {
	return &AssetClient{
		uploadURL: strings.TrimSuffix(uploadURL, "/"),
		clientID:  clientID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether uploads can be attempted
func (c *AssetClient) Configured() bool {
	return c.uploadURL != "" && c.clientID != ""
}

// Upload sends the image as multipart form field "image" and returns the
// public link
func (c *AssetClient) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: image host is not configured", ErrAssetUpload)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetUpload, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result assetResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: status %d: unexpected response", ErrAssetUpload, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !result.Success || result.Data.Link == "" {
		return "", fmt.Errorf("%w: status %d: %s", ErrAssetUpload, resp.StatusCode, describeAssetError(result.Data.Error))
	}
	return result.Data.Link, nil
}

func describeAssetError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "upload error"
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return msg
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}
