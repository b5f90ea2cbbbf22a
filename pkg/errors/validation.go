package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTextLength bounds query and author text sent to the API.
const maxTextLength = 256

// ValidateQuery validates module or package search text.
//
// The rules are conservative:
//   - No empty text
//   - No control characters
//   - Maximum length of 256 characters
//
// Whether the text is long enough to search is decided by the match mode,
// not here.
func ValidateQuery(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidQuery, "search text cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return New(ErrCodeInvalidQuery, "search text too long (max %d characters)", maxTextLength)
	}
	for _, r := range text {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "search text contains invalid control characters")
		}
	}
	return nil
}

// authorIDRegex matches CPAN author ids and prefixes of them.
var authorIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// ValidateAuthorID validates a CPAN author id such as "ETHER" or
// "PERLANCAR". Lowercase is accepted; the API compares case-insensitively.
func ValidateAuthorID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidAuthor, "author id cannot be empty")
	}
	if len(id) > maxTextLength {
		return New(ErrCodeInvalidAuthor, "author id too long (max %d characters)", maxTextLength)
	}
	if !authorIDRegex.MatchString(id) {
		return New(ErrCodeInvalidAuthor, "invalid author id: %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}
	return nil
}

// ValidateAPIVersion checks that v names a supported API version.
func ValidateAPIVersion(v int) error {
	if v != 1 && v != 2 {
		return New(ErrCodeInvalidConfig, "unsupported API version %d (want 1 or 2)", v)
	}
	return nil
}
