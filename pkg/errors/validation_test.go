package errors

import (
	"strings"
	"testing"
)

func TestValidateCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Academic Excellence", false},
		{"single word", "Sports", false},
		{"unicode", "Médaille d'honneur", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 101), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
		{"tab", "foo\tbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateCategory(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateOutputFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"png", "certificate-design-1.png", false},
		{"svg", "certificate-design-2.svg", false},
		{"json", "ops.json", false},

		{"empty", "", true},
		{"with path /", "out/file.png", true},
		{"with path \\", "out\\file.png", true},
		{"hidden file", ".hidden.png", true},
		{"null byte", "a\x00.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://generativelanguage.googleapis.com", false},
		{"http", "http://127.0.0.1:8080", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
