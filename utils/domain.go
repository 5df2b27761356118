package utils

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the eTLD+1 of a URL or bare host, so
// "https://a.login.example.co.uk/x" gives "example.co.uk". IP hosts and
// unparsable input return "".
func RegistrableDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return ""
	}

	host := strings.ToLower(strings.Trim(u.Hostname(), "."))
	if net.ParseIP(host) != nil {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")

	eTLD, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return eTLD
}
