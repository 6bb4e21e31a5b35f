package session

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/maksimkurb/netpolicy/src/internal/ciphers"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

// DoNotTrackPolicy controls the DNT request header.
type DoNotTrackPolicy int

const (
	// Skip sends no DNT header.
	Skip DoNotTrackPolicy = iota
	// AllowToTrack sends DNT: 0.
	AllowToTrack
	// DoNotAllowToTrack sends DNT: 1.
	DoNotAllowToTrack
)

// String returns the configuration form of the policy.
func (p DoNotTrackPolicy) String() string {
	switch p {
	case AllowToTrack:
		return "allow"
	case DoNotAllowToTrack:
		return "doNotAllow"
	default:
		return "skip"
	}
}

func (p DoNotTrackPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *DoNotTrackPolicy) UnmarshalText(text []byte) error {
	v, ok := ParseDoNotTrackPolicy(string(text))
	if !ok {
		return fmt.Errorf("unknown Do-Not-Track policy %q", text)
	}
	*p = v
	return nil
}

// ParseDoNotTrackPolicy parses the configuration form. Matching is case-insensitive.
func ParseDoNotTrackPolicy(s string) (DoNotTrackPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return Skip, true
	case "allow":
		return AllowToTrack, true
	case "donotallow":
		return DoNotAllowToTrack, true
	}
	return Skip, false
}

// headerValue returns the DNT header value; ok is false when no header is sent.
func (p DoNotTrackPolicy) headerValue() (string, bool) {
	switch p {
	case AllowToTrack:
		return "0", true
	case DoNotAllowToTrack:
		return "1", true
	}
	return "", false
}

// Policy is the networking policy a session was created with.
type Policy struct {
	UserAgent            useragents.Info
	UserAgentValue       string
	AcceptLanguage       string
	DoNotTrack           DoNotTrackPolicy
	CanSendReferrer      bool
	WorkingOffline       bool
	UsingSystemProxyAuth bool
	Ciphers              []*tls.CipherSuite
}

// CipherNames returns the names of the offered cipher suites.
func (p Policy) CipherNames() []string {
	return ciphers.Names(p.Ciphers)
}

func (p Policy) clone() Policy {
	p.Ciphers = append([]*tls.CipherSuite(nil), p.Ciphers...)
	return p
}
