package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestExtractError_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("underlying network failure")
	err := NewExtractError(ErrCodeNavigation, "navigation failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var extractErr *ExtractError
	wrapped := fmt.Errorf("handler: %w", err)
	if !errors.As(wrapped, &extractErr) {
		t.Fatal("errors.As should recover the ExtractError through wrapping")
	}
	if extractErr.Code != ErrCodeNavigation {
		t.Errorf("Code = %q", extractErr.Code)
	}
}

func TestExtractError_Error(t *testing.T) {
	withCause := NewExtractError(ErrCodeTimeout, "deadline hit", errors.New("context deadline exceeded"))
	if got := withCause.Error(); got != "FETCH_TIMEOUT: deadline hit: context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}

	without := NewExtractError(ErrCodeNoContent, "nothing extracted", nil)
	if got := without.Error(); got != "NO_CONTENT_RETRIEVABLE: nothing extracted" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExtractError_ToDetail(t *testing.T) {
	err := NewExtractError(ErrCodeInvalidInput, "bad url", errors.New("secret internals"))
	detail := err.ToDetail()
	if detail.Code != ErrCodeInvalidInput || detail.Message != "bad url" {
		t.Errorf("detail = %+v", detail)
	}
}
