// Package storage uploads media files to a content-addressed pinning service
// and returns the resulting content hash.  The service is pinata-compatible:
// a multipart POST authenticated with a static API key and secret.
package storage

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "mime/multipart"
    "net/http"
    "time"
)

// ErrUpload marks any pinning service failure.
var ErrUpload = errors.New("content upload failed")

const pinPath = "/pinning/pinFileToIPFS"

// Client talks to the pinning service.
type Client struct {
    endpoint  string
    apiKey    string
    apiSecret string
    http      *http.Client
}

// NewClient builds a pinning client.  endpoint is the service base URL
// without trailing slash.
func NewClient(endpoint, apiKey, apiSecret string) *Client {
    return &Client{
        endpoint:  endpoint,
        apiKey:    apiKey,
        apiSecret: apiSecret,
        http:      &http.Client{Timeout: 2 * time.Minute},
    }
}

// Upload streams the file to the pinning service and returns its content
// hash.  The file is buffered through a pipe so large uploads never sit in
// memory twice.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
    pr, pw := io.Pipe()
    mw := multipart.NewWriter(pw)

    go func() {
        part, err := mw.CreateFormFile("file", filename)
        if err != nil {
            pw.CloseWithError(err)
            return
        }
        if _, err := io.Copy(part, file); err != nil {
            pw.CloseWithError(err)
            return
        }
        pw.CloseWithError(mw.Close())
    }()

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+pinPath, pr)
    if err != nil {
        return "", fmt.Errorf("%w: build request: %v", ErrUpload, err)
    }
    req.Header.Set("Content-Type", mw.FormDataContentType())
    req.Header.Set("pinata_api_key", c.apiKey)
    req.Header.Set("pinata_secret_api_key", c.apiSecret)

    resp, err := c.http.Do(req)
    if err != nil {
        return "", fmt.Errorf("%w: %v", ErrUpload, err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return "", fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, body)
    }

    var out struct {
        IpfsHash string `json:"IpfsHash"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", fmt.Errorf("%w: decode response: %v", ErrUpload, err)
    }
    if out.IpfsHash == "" {
        return "", fmt.Errorf("%w: empty hash in response", ErrUpload)
    }
    return out.IpfsHash, nil
}
