// Package blobstore uploads binary objects to a Supabase Storage bucket and
// hands back the public retrieval URL for each object.
package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type SupabaseClient struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabase(baseURL, serviceKey, bucket string) *SupabaseClient {
	return &SupabaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type storageErrorResp struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Upload stores data under key in the bucket and returns the public URL for
// it. Keys may contain slashes; Supabase treats them as folders.
func (c *SupabaseClient) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var storageErr storageErrorResp
		if json.Unmarshal(body, &storageErr) == nil && (storageErr.Message != "" || storageErr.Error != "") {
			return "", fmt.Errorf("upload %s: %d %s %s", key, resp.StatusCode, storageErr.Error, storageErr.Message)
		}
		return "", fmt.Errorf("upload %s: unexpected status %d", key, resp.StatusCode)
	}

	return c.PublicURL(key), nil
}

// PublicURL is stable for the lifetime of the object.
func (c *SupabaseClient) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, key)
}
