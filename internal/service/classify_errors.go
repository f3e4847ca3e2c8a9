package service

import (
	"errors"
	"fmt"
)

// ClassifyErrorKind tells a caller how a classification failed and whether retrying can help.
type ClassifyErrorKind int

const (
	// KindInternal is an unclassified failure.
	KindInternal ClassifyErrorKind = iota
	// KindConfigMissing means no upstream URL is configured. Operator action is needed.
	KindConfigMissing
	// KindUnavailable means the upstream could not be reached in time. Retryable.
	KindUnavailable
	// KindUpstreamStatus means the upstream answered with a non-success status.
	KindUpstreamStatus
	// KindInvalidPayload means the upstream answered success with a body that is not JSON.
	KindInvalidPayload
)

func (k ClassifyErrorKind) String() string {
	switch k {
	case KindConfigMissing:
		return "config_missing"
	case KindUnavailable:
		return "unavailable"
	case KindUpstreamStatus:
		return "upstream_status"
	case KindInvalidPayload:
		return "invalid_payload"
	default:
		return "internal"
	}
}

// ClassifyError is returned by ClassifyService.Classify for every failure.
type ClassifyError struct {
	Kind ClassifyErrorKind
	// StatusCode and Body are set for KindUpstreamStatus.
	StatusCode int
	Body       string
	Err        error
}

func (e *ClassifyError) Error() string {
	switch {
	case e.Kind == KindUpstreamStatus:
		return fmt.Sprintf("service: classifier returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("service: classify %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("service: classify %s", e.Kind)
	}
}

func (e *ClassifyError) Unwrap() error {
	return e.Err
}

// Details describes the failure for the caller.
func (e *ClassifyError) Details() string {
	if e.Kind == KindUpstreamStatus {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// ClassifyErrorKindOf returns the kind of err, or KindInternal when err is not a *ClassifyError.
func ClassifyErrorKindOf(err error) ClassifyErrorKind {
	var classifyErr *ClassifyError
	if errors.As(err, &classifyErr) {
		return classifyErr.Kind
	}
	return KindInternal
}
