package insights

import (
	"net/url"
	"strings"
)

// NormalizeURL validates a user-entered product URL and returns its canonical
// form, which is also the cache key. A missing scheme defaults to https.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || (!strings.Contains(host, ".") && host != "localhost") {
		return "", ErrInvalidURL
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	return u.String(), nil
}
