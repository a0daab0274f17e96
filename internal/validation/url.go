// Package validation checks user supplied configuration values.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError represents a URL validation failure
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL validates that a URL is well-formed and optionally requires HTTPS.
// Empty URLs are allowed.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return URLValidationError{Field: fieldName, Message: "invalid URL format", URL: urlString}
	}

	if parsedURL.Scheme == "" {
		return URLValidationError{Field: fieldName, Message: "URL must include a scheme (http:// or https://)", URL: urlString}
	}
	if parsedURL.Host == "" {
		return URLValidationError{Field: fieldName, Message: "URL must include a host", URL: urlString}
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if requireHTTPS && scheme != "https" {
		return URLValidationError{Field: fieldName, Message: "URL must use HTTPS in production", URL: urlString}
	}
	if scheme != "http" && scheme != "https" {
		return URLValidationError{Field: fieldName, Message: "URL scheme must be http or https", URL: urlString}
	}

	return nil
}

// ValidateServiceURL validates the root URL of a web service that request
// paths and query strings are appended to. It may carry a path but no query,
// fragment or credentials, and it is required.
func ValidateServiceURL(urlString, fieldName string, requireHTTPS bool) error {
	if strings.TrimSpace(urlString) == "" {
		return URLValidationError{Field: fieldName, Message: "is required"}
	}
	if err := ValidateURL(urlString, fieldName, requireHTTPS); err != nil {
		return err
	}

	parsedURL, _ := url.Parse(urlString) // Already validated above

	if parsedURL.RawQuery != "" || parsedURL.ForceQuery {
		return URLValidationError{Field: fieldName, Message: "service URL must not contain query parameters", URL: urlString}
	}
	if parsedURL.Fragment != "" {
		return URLValidationError{Field: fieldName, Message: "service URL must not contain a fragment", URL: urlString}
	}
	if parsedURL.User != nil {
		return URLValidationError{Field: fieldName, Message: "service URL must not contain credentials", URL: parsedURL.Redacted()}
	}

	return nil
}
