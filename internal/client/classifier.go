package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"civic-issues-api/internal/models"
)

// ErrUnreachable marks failures to reach the classifier or to read its reply:
// connection errors, timeouts and cancellations.
var ErrUnreachable = errors.New("classifier unreachable")

// ClassifierResponse is the raw upstream reply. Body is never decoded here.
type ClassifierResponse struct {
	StatusCode int
	Body       []byte
}

// ClassifierClient posts images to an ML inference service's /predict endpoint.
type ClassifierClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClassifierClient creates a client for the classifier at baseURL.
// A nil httpClient falls back to http.DefaultClient; deadlines come from the context.
func NewClassifierClient(baseURL string, httpClient *http.Client) *ClassifierClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ClassifierClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Predict forwards img as the multipart field "file" and returns the upstream reply.
func (c *ClassifierClient) Predict(ctx context.Context, img models.UploadedImage) (*ClassifierResponse, error) {
	body, contentType, err := encodeImageForm(img)
	if err != nil {
		return nil, fmt.Errorf("client: failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", body)
	if err != nil {
		return nil, fmt.Errorf("client: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}

	return &ClassifierResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

func encodeImageForm(img models.UploadedImage) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = "upload"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
