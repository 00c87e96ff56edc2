package logging

import (
	"log/slog"
	"strings"
)

// Redactor masks credential-looking query parameter values in URLs before
// they reach the log output. Feed URLs regularly carry access tokens.
type Redactor struct {
	sensitive []string
	keys      map[string]bool
}

// Mask replaces a redacted value.
const Mask = "***"

// NewRedactor creates a Redactor for the default parameter names. Attribute
// values under the keys target, url and upstream are inspected.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitive: []string{"token", "key", "secret", "password", "passwd", "auth", "sig"},
		keys:      map[string]bool{"target": true, "url": true, "upstream": true},
	}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if !r.keys[a.Key] || a.Value.Kind() != slog.KindString {
		return a
	}
	return slog.String(a.Key, r.RedactURL(a.Value.String()))
}

// RedactURL returns raw with the values of sensitive query parameters
// replaced by Mask. Parameter names are matched case-insensitively by
// substring, so "api_key" and "accessToken" are both masked.
func (r *Redactor) RedactURL(raw string) string {
	q := strings.IndexByte(raw, '?')
	if q < 0 {
		return raw
	}

	params := strings.Split(raw[q+1:], "&")
	changed := false
	for i, p := range params {
		name, _, ok := strings.Cut(p, "=")
		if !ok || !r.isSensitive(name) {
			continue
		}
		params[i] = name + "=" + Mask
		changed = true
	}
	if !changed {
		return raw
	}
	return raw[:q+1] + strings.Join(params, "&")
}

func (r *Redactor) isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, s := range r.sensitive {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
