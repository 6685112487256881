package egress

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Endpoint is a parsed proxy address in the shape the browser launch wants:
// a server URL without credentials plus separate credentials.
type Endpoint struct {
	Server   string
	Username string
	Password string
}

// ParseEndpoint parses [scheme://][user:pass@]host:port. A missing scheme
// means http.
func ParseEndpoint(s string) (Endpoint, error) {
	if !ValidateFormat(s) {
		return Endpoint{}, fmt.Errorf("invalid proxy %q: expected host:port or user:pass@host:port", s)
	}

	raw := s
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		// url.Error repeats the raw input, credentials included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return Endpoint{}, fmt.Errorf("invalid proxy %q: %w", Redact(s), err)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return Endpoint{}, fmt.Errorf("invalid proxy %q: host and port are required", Redact(s))
	}

	ep := Endpoint{Server: fmt.Sprintf("%s://%s", u.Scheme, u.Host)}
	if u.User != nil {
		ep.Username = u.User.Username()
		ep.Password, _ = u.User.Password()
	}
	return ep, nil
}

// Redact hides the password part of an endpoint for logging.
func Redact(s string) string {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	creds := s[:at]
	prefix := ""
	if i := strings.Index(creds, "://"); i >= 0 {
		prefix, creds = creds[:i+3], creds[i+3:]
	}
	i := strings.Index(creds, ":")
	if i < 0 {
		return s
	}
	return prefix + creds[:i] + ":***" + s[at:]
}
