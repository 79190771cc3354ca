package booking

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrUnresolvedPlaceholder is returned when a URL template still contains a
// {name} placeholder after substitution
var ErrUnresolvedPlaceholder = errors.New("unresolved url template placeholder")

// ErrInvalidURLTemplate is returned when an expanded template is not an
// absolute http(s) URL
var ErrInvalidURLTemplate = errors.New("invalid url template")

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

// ExpandURLTemplate substitutes {name} placeholders in tmpl. Values are
// path-escaped before the query string and query-escaped after it.
// Placeholders without a non-empty value are reported together.
func ExpandURLTemplate(tmpl string, values map[string]string) (string, error) {
	queryStart := strings.IndexByte(tmpl, '?')

	var missing []string
	var b strings.Builder
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(tmpl, -1) {
		b.WriteString(tmpl[last:loc[0]])
		last = loc[1]

		name := tmpl[loc[2]:loc[3]]
		v, ok := values[name]
		if !ok || v == "" {
			missing = append(missing, name)
			b.WriteString(tmpl[loc[0]:loc[1]])
			continue
		}
		if queryStart >= 0 && loc[0] > queryStart {
			b.WriteString(url.QueryEscape(v))
		} else {
			b.WriteString(url.PathEscape(v))
		}
	}
	b.WriteString(tmpl[last:])
	expanded := b.String()

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(missing, ", "))
	}

	u, err := url.Parse(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURLTemplate, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http url", ErrInvalidURLTemplate, expanded)
	}
	return expanded, nil
}

// isConfigError reports whether err comes from clinic configuration rather
// than from the provider
func isConfigError(err error) bool {
	return errors.Is(err, ErrUnresolvedPlaceholder) ||
		errors.Is(err, ErrInvalidURLTemplate) ||
		errors.Is(err, errUnknownTimezone)
}
