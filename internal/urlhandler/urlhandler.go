package urlhandler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL trims the input, adds an http scheme when missing, lowercases
// the host and strips the fragment.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", fmt.Errorf("URL is empty or only whitespace")
	}

	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "http://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmedURL, err)
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL lacks a valid hostname")
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""
	parsedURL.RawFragment = ""

	return parsedURL.String(), nil
}

// ResolveURL resolves a (possibly relative) href against base and normalizes
// the result.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", fmt.Errorf("href is empty")
	}

	if base == nil {
		parsedHref, err := url.Parse(trimmedHref)
		if err != nil {
			return "", fmt.Errorf("error parsing base-less href '%s': %w", trimmedHref, err)
		}
		if !parsedHref.IsAbs() {
			return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmedHref)
		}
		return NormalizeURL(parsedHref.String())
	}

	resolved, err := base.Parse(trimmedHref)
	if err != nil {
		return "", fmt.Errorf("error resolving href '%s' with base '%s': %w", trimmedHref, base.String(), err)
	}
	return NormalizeURL(resolved.String())
}

// ValidateURLFormat checks that rawURL is an absolute http(s) URL.
func ValidateURLFormat(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return fmt.Errorf("URL is empty")
	}

	parsedURL, err := url.ParseRequestURI(trimmedURL)
	if err != nil {
		return fmt.Errorf("invalid URL format '%s': %w", trimmedURL, err)
	}

	switch strings.ToLower(parsedURL.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported URL scheme '%s' in '%s'", parsedURL.Scheme, trimmedURL)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL has no host: %s", trimmedURL)
	}

	return nil
}

// SanitizeFilename creates a safe filename string from a URL or any input string.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "sanitized_empty_input"
	}
	return name
}
