package errors

import (
	"strings"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"module", "Moose", false},
		{"namespaced", "Module::Runtime", false},
		{"single char", "M", false},
		{"unicode", "Acme::ÜberModule", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuery(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidQuery) {
				t.Errorf("ValidateQuery(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateAuthorID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"upper", "ETHER", false},
		{"lower", "perlancar", false},
		{"with dash", "TOBYINK-X", false},
		{"with digits", "ABC123", false},

		{"empty", "", true},
		{"leading digit", "1ABC", true},
		{"space", "AB CD", true},
		{"path", "../etc", true},
		{"delimiter", "AB=CD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthorID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAuthorID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
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
		{"https", "https://cpanmeta.grinnz.com", false},
		{"http", "http://localhost:3000", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
		{"no host", "https://", true},
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

func TestValidateAPIVersion(t *testing.T) {
	for _, v := range []int{1, 2} {
		if err := ValidateAPIVersion(v); err != nil {
			t.Errorf("ValidateAPIVersion(%d) = %v", v, err)
		}
	}
	for _, v := range []int{0, 3, -1} {
		if err := ValidateAPIVersion(v); !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidateAPIVersion(%d) = %v, want INVALID_CONFIG", v, err)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidQuery,
		ErrCodeInvalidAuthor,
		ErrCodeInvalidSearchType,
		ErrCodeInvalidMatchMode,
		ErrCodeInvalidLocation,
		ErrCodeInvalidConfig,
		ErrCodeNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
