package errors

import (
	"strings"
	"testing"
)

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid default", "P0301", false},
		{"valid plain number", "0042", false},
		{"valid with dash", "LOT-7-0001", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 65), true},
		{"path traversal ..", "P..01", true},
		{"slash", "P/0301", true},
		{"null byte", "P\x000301", true},
		{"backslash", "P\\0301", true},
		{"control char", "P\x010301", true},
		{"newline", "P03\n01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCode) {
				t.Errorf("ValidateCode(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidCode)
			}
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "P", false},
		{"empty", "", false},
		{"mixed", "Box_A-", false},

		{"space", "P 1", true},
		{"slash", "a/b", true},
		{"traversal", "..", true},
		{"too long", strings.Repeat("P", 33), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrefix(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrefix(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
