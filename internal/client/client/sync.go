package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type syncResponse struct {
	ID *int64 `json:"id"`
}

// SyncRow pushes a full local row to POST /{table}/sync and returns the id
// the backend assigned, when it reports one. A 2xx body without a readable
// id is still a successful push.
func (c *HTTPClient) SyncRow(ctx context.Context, table string, row any) (*int64, error) {
	raw, err := c.do(ctx, http.MethodPost, table+"/sync", nil, row)
	if err != nil {
		return nil, err
	}
	var out syncResponse
	if len(bytes.TrimSpace(raw)) == 0 || decodeData(raw, &out) != nil {
		return nil, nil
	}
	return out.ID, nil
}

// UploadResult is the body of a successful POST /upload.
type UploadResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

// UploadImage sends r as the multipart "image" field.
func (c *HTTPClient) UploadImage(ctx context.Context, fileName string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", fileName)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload", nil), &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var out UploadResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success || out.ImageURL == "" {
		return nil, fmt.Errorf("upload rejected: %s", out.Message)
	}
	return &out, nil
}
