package models

import (
	"errors"
	"fmt"
)

// Kind is the stable, client-facing error code of a failed scan.
type Kind string

const (
	KindMissingURL       Kind = "missing_url"
	KindInvalidURL       Kind = "invalid_url"
	KindMissingAPIKey    Kind = "missing_api_key"
	KindAPIError         Kind = "api_error"
	KindVideoUnavailable Kind = "video_unavailable"
	KindTimeout          Kind = "timeout"
	KindUnknown          Kind = "unknown_error"
	KindDownloadFailed   Kind = "download_failed"
	KindConfiguration    Kind = "configuration_error"
	KindInternal         Kind = "internal_error"
)

// Category groups kinds by who is at fault.
type Category string

const (
	CategoryInvalidInput        Category = "invalid_input"
	CategoryConfiguration       Category = "configuration_error"
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
	CategoryInternal            Category = "internal_error"
)

// CategoryOf returns the category a kind belongs to.
func CategoryOf(k Kind) Category {
	switch k {
	case KindMissingURL, KindInvalidURL, KindVideoUnavailable:
		return CategoryInvalidInput
	case KindMissingAPIKey, KindConfiguration:
		return CategoryConfiguration
	case KindAPIError, KindTimeout, KindDownloadFailed:
		return CategoryUpstreamUnavailable
	default:
		return CategoryInternal
	}
}

// ScanError is returned by the pipeline when a scan cannot produce a report.
type ScanError struct {
	Kind     Kind
	Category Category
	Message  string
	Err      error
}

// NewScanError builds a ScanError with the category derived from kind.
func NewScanError(kind Kind, message string, err error) *ScanError {
	return &ScanError{
		Kind:     kind,
		Category: CategoryOf(kind),
		Message:  message,
		Err:      err,
	}
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// AsScanError unwraps err into a ScanError. Anything else is reported as an
// internal error with a generic message.
func AsScanError(err error) *ScanError {
	if err == nil {
		return nil
	}
	var se *ScanError
	if errors.As(err, &se) {
		return se
	}
	return NewScanError(KindInternal, "internal server error", err)
}
