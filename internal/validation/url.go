package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

const maxURLLen = 2048

// CoverURLValidator checks image links before anything is downloaded from
// them.
type CoverURLValidator struct {
	AllowLocalhost  bool
	AllowPrivateIPs bool
	MaxLength       int
}

// NewCoverURLValidator refuses loopback and LAN hosts. The server uses it
// because it fetches on the client's behalf.
func NewCoverURLValidator() *CoverURLValidator {
	return &CoverURLValidator{MaxLength: maxURLLen}
}

// NewPermissiveCoverURLValidator accepts local and LAN hosts, for links a
// user types into the terminal.
func NewPermissiveCoverURLValidator() *CoverURLValidator {
	return &CoverURLValidator{AllowLocalhost: true, AllowPrivateIPs: true, MaxLength: maxURLLen}
}

// ValidateAndNormalize returns raw as an absolute http(s) URL. A missing
// scheme defaults to https.
func (v *CoverURLValidator) ValidateAndNormalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", errors.New("URL cannot be empty")
	case len(raw) > v.MaxLength:
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	case strings.ContainsAny(raw, "<>\"'` "):
		return "", errors.New("URL contains invalid characters")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q, use http or https", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", errors.New("URL must have a valid hostname")
	}
	if err := v.checkHost(u.Hostname()); err != nil {
		return "", err
	}
	if strings.Contains(u.Path, "..") {
		return "", errors.New("URL path may not contain ..")
	}
	return u.String(), nil
}

func (v *CoverURLValidator) checkHost(host string) error {
	if isLocalhost(host) && !v.AllowLocalhost {
		return errors.New("localhost URLs are not permitted")
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	if ip.IsUnspecified() || ip.Equal(net.IPv4bcast) {
		return fmt.Errorf("invalid host address %s", host)
	}
	if isPrivateIP(ip) && !v.AllowPrivateIPs {
		return errors.New("private IP addresses are not permitted")
	}
	return nil
}

func isLocalhost(host string) bool {
	host = strings.ToLower(host)
	switch {
	case host == "localhost", host == "::1":
		return true
	case strings.HasSuffix(host, ".localhost"):
		return true
	}
	return strings.HasPrefix(host, "127.")
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
