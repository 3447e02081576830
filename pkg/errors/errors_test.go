package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRange, "start %d > end %d", 5, 3)

	if err.Code != ErrCodeInvalidRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRange)
	}

	if err.Message != "start 5 > end 3" {
		t.Errorf("Message = %v, want %v", err.Message, "start 5 > end 3")
	}

	expected := "INVALID_RANGE: start 5 > end 3"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeRasterization, cause, "parse svg")

	if err.Code != ErrCodeRasterization {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRasterization)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestFor(t *testing.T) {
	err := Wrap(ErrCodeRasterization, errors.New("boom"), "render unit").For("P0301")

	want := "RASTERIZATION: P0301: render unit: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if got := GetSubject(err); got != "P0301" {
		t.Errorf("GetSubject() = %q, want %q", got, "P0301")
	}
}

func TestGetSubjectNested(t *testing.T) {
	inner := New(ErrCodeEncodingCapacity, "too long").For("P9999")
	outer := fmt.Errorf("pipeline: %w", Wrap(ErrCodeInternal, inner, "unit stage"))

	if got := GetSubject(outer); got != "P9999" {
		t.Errorf("GetSubject() = %q, want %q", got, "P9999")
	}
	if got := GetSubject(errors.New("plain")); got != "" {
		t.Errorf("GetSubject(plain) = %q, want empty", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeGridOverflow, "test"),
			code:     ErrCodeGridOverflow,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeGridOverflow, "test"),
			code:     ErrCodeLayoutConstraint,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodePersist, New(ErrCodeInvalidCode, "inner"), "outer"),
			code:     ErrCodePersist,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("stage: %w", New(ErrCodeEmptyDocument, "nothing generated")),
			code:     ErrCodeEmptyDocument,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidRange,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidRange,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeEncodingCapacity, "test"),
			expected: ErrCodeEncodingCapacity,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeEmptyDocument, "nothing generated"),
			expected: "nothing generated",
		},
		{
			name:     "with subject and cause",
			err:      Wrap(ErrCodeRasterization, errors.New("bad xml"), "render unit").For("P0302"),
			expected: "P0302: render unit: bad xml",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWithSubject(t *testing.T) {
	plain := errors.New("boom")
	if got := WithSubject(plain, "P0301"); got != plain {
		t.Errorf("WithSubject(plain) = %v, want unchanged", got)
	}

	orig := New(ErrCodeRasterization, "draw")
	got := WithSubject(orig, "P0301")
	if GetSubject(got) != "P0301" {
		t.Errorf("GetSubject() = %q, want P0301", GetSubject(got))
	}
	if orig.Subject != "" {
		t.Error("WithSubject modified the original error")
	}

	named := New(ErrCodePersist, "write").For("P0302")
	if got := WithSubject(named, "P0301"); GetSubject(got) != "P0302" {
		t.Errorf("WithSubject overwrote subject: %q", GetSubject(got))
	}

	wrapped := fmt.Errorf("stage: %w", orig)
	if got := WithSubject(wrapped, "P0301"); got != wrapped {
		t.Errorf("WithSubject(wrapped) = %v, want unchanged", got)
	}
}
