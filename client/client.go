// Package client provides the HTTP API client and the session-local state
// store that mirrors server-side image records for an editor view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/dfryer1193/imgstash/api"
)

// Client is a minimal HTTP client for the imgstash API.
// Raw net/http, no SDK.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for the server at baseURL, authenticating
// with the given bearer token
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error (%d)", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListImages fetches all image records owned by the authenticated user
func (c *Client) ListImages(ctx context.Context) ([]api.Image, error) {
	var images []api.Image
	if err := c.do(ctx, http.MethodGet, "/api/images", nil, "", &images); err != nil {
		return nil, err
	}
	return images, nil
}

// UploadImage posts a new image file as the multipart field "image"
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, content []byte) (api.Image, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return api.Image{}, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return api.Image{}, fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return api.Image{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	var img api.Image
	if err := c.do(ctx, http.MethodPost, "/api/images", body, writer.FormDataContentType(), &img); err != nil {
		return api.Image{}, err
	}
	return img, nil
}

// EditImage replaces an image's contents with the given data URI
func (c *Client) EditImage(ctx context.Context, id int64, dataURI string) (api.Image, error) {
	reqBody, err := json.Marshal(api.EditImageRequest{EditedImage: dataURI})
	if err != nil {
		return api.Image{}, fmt.Errorf("failed to encode request: %w", err)
	}

	var img api.Image
	path := fmt.Sprintf("/api/images/%d", id)
	if err := c.do(ctx, http.MethodPut, path, bytes.NewReader(reqBody), "application/json", &img); err != nil {
		return api.Image{}, err
	}
	return img, nil
}

// DeleteImage removes an image record and its stored bytes
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/images/%d", id), nil, "", nil)
}

// CurrentUser returns the identity the server resolved for this token
func (c *Client) CurrentUser(ctx context.Context) (api.User, error) {
	var user api.User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, "", &user); err != nil {
		return api.User{}, err
	}
	return user, nil
}
