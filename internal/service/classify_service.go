package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic-issues-api/internal/client"
	"civic-issues-api/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	// DefaultClassifyTimeout bounds a single call to the upstream classifier.
	DefaultClassifyTimeout = 20 * time.Second

	maxErrorBodyBytes = 2048
)

var ErrClassifierNotConfigured = errors.New("ML_API_URL is not configured")

// Classifier interface for dependency injection
type Classifier interface {
	Predict(ctx context.Context, img models.UploadedImage) (*client.ClassifierResponse, error)
}

// ClassifyService forwards issue photos to the upstream classifier and translates its reply.
type ClassifyService struct {
	classifier Classifier
	timeout    time.Duration
}

// NewClassifyService creates a classify service. A nil classifier means the upstream
// is not configured; every call then fails with KindConfigMissing.
func NewClassifyService(classifier Classifier, timeout time.Duration) *ClassifyService {
	if timeout <= 0 {
		timeout = DefaultClassifyTimeout
	}
	return &ClassifyService{classifier: classifier, timeout: timeout}
}

// CheckConfig reports whether an upstream classifier is configured.
func (s *ClassifyService) CheckConfig() error {
	if s.classifier == nil {
		return &ClassifyError{Kind: KindConfigMissing, Err: ErrClassifierNotConfigured}
	}
	return nil
}

// Classify sends img to the upstream classifier and returns its JSON reply unchanged.
// Every failure is a *ClassifyError.
func (s *ClassifyService) Classify(ctx context.Context, img models.UploadedImage) (result json.RawMessage, err error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ClassifyError{Kind: KindInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.classifier.Predict(ctx, img)
	if err != nil {
		if errors.Is(err, client.ErrUnreachable) {
			return nil, &ClassifyError{Kind: KindUnavailable, Err: err}
		}
		return nil, &ClassifyError{Kind: KindInternal, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ClassifyError{
			Kind:       KindUpstreamStatus,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(resp.Body),
		}
	}

	if !json.Valid(resp.Body) {
		return nil, &ClassifyError{Kind: KindInvalidPayload, Err: errors.New("ML API returned invalid JSON")}
	}

	label := gjson.GetBytes(resp.Body, "prediction")
	if !label.Exists() {
		label = gjson.GetBytes(resp.Body, "category")
	}
	log.Info().
		Str("filename", img.Filename).
		Int("bytes", len(img.Data)).
		Str("label", label.String()).
		Float64("confidence", gjson.GetBytes(resp.Body, "confidence").Float()).
		Msg("image classified")

	return json.RawMessage(resp.Body), nil
}

func truncateBody(body []byte) string {
	if len(body) == 0 {
		return "(empty body)"
	}
	if len(body) <= maxErrorBodyBytes {
		return string(body)
	}
	return strings.ToValidUTF8(string(body[:maxErrorBodyBytes]), "") + "...(truncated)"
}
