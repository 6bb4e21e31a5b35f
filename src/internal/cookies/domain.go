package cookies

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// domainAndType resolves the Domain attribute of a cookie received from
// host. ok is false when the jar must reject the cookie.
func domainAndType(host, domain string) (string, bool, bool) {
	if domain == "" {
		return host, true, true
	}

	if isIP(host) {
		// IP hosts only accept a Domain attribute equal to the address
		if host != domain {
			return "", false, false
		}
		return host, true, true
	}

	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" || strings.HasSuffix(domain, ".") {
		return "", false, false
	}

	if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
		if host != domain {
			return "", false, false
		}
		return host, true, true
	}

	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return "", false, false
	}
	return domain, false, true
}

func isIP(host string) bool {
	return net.ParseIP(strings.Trim(host, "[]")) != nil
}
