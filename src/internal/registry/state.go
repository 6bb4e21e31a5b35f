package registry

import (
	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/session"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

// DoNotTrackPolicy is re-exported from session for callers of the registry.
type DoNotTrackPolicy = session.DoNotTrackPolicy

const (
	Skip              = session.Skip
	AllowToTrack      = session.AllowToTrack
	DoNotAllowToTrack = session.DoNotAllowToTrack
)

// State is an immutable snapshot of the scalar policy.
type State struct {
	AcceptLanguage       string           `json:"accept_language"`
	DoNotTrack           DoNotTrackPolicy `json:"do_not_track"`
	CanSendReferrer      bool             `json:"can_send_referrer"`
	WorkingOffline       bool             `json:"working_offline"`
	UsingSystemProxyAuth bool             `json:"using_system_proxy_authentication"`
	UserAgent            string           `json:"user_agent"`
	Ciphers              []string         `json:"ciphers"`
	DiskCacheLimitKB     int              `json:"disk_cache_limit_kb"`
}

// builtinState is used until options are read and whenever the option
// source is unavailable.
func builtinState() *State {
	return &State{
		AcceptLanguage:   config.DefaultAcceptLanguage,
		DoNotTrack:       Skip,
		CanSendReferrer:  false,
		WorkingOffline:   false,
		UserAgent:        useragents.DefaultIdentifier,
		Ciphers:          []string{config.CiphersDefault},
		DiskCacheLimitKB: config.DefaultDiskCacheLimitKB,
	}
}

func (s *State) clone() *State {
	next := *s
	next.Ciphers = append([]string(nil), s.Ciphers...)
	return &next
}

// applyOption stores value in the field named by key. known is false for
// keys the registry does not watch; ok is false when value has the wrong type.
func (s *State) applyOption(key string, value any) (known, ok bool) {
	switch key {
	case config.OptionAcceptLanguage:
		v, ok := config.StringValue(value)
		if ok {
			s.AcceptLanguage = v
		}
		return true, ok
	case config.OptionDoNotTrack:
		p, ok := doNotTrackValue(value)
		if ok {
			s.DoNotTrack = p
		}
		return true, ok
	case config.OptionEnableReferrer:
		v, ok := config.BoolValue(value)
		if ok {
			s.CanSendReferrer = v
		}
		return true, ok
	case config.OptionWorkingOffline:
		v, ok := config.BoolValue(value)
		if ok {
			s.WorkingOffline = v
		}
		return true, ok
	case config.OptionUseSystemProxyAuthentication:
		v, ok := config.BoolValue(value)
		if ok {
			s.UsingSystemProxyAuth = v
		}
		return true, ok
	case config.OptionUserAgent:
		v, ok := config.StringValue(value)
		ok = ok && v != ""
		if ok {
			s.UserAgent = v
		}
		return true, ok
	case config.OptionCiphers:
		v, ok := config.StringListValue(value)
		if ok {
			s.Ciphers = v
		}
		return true, ok
	case config.OptionDiskCacheLimit:
		v, ok := config.IntValue(value)
		ok = ok && v >= 0
		if ok {
			s.DiskCacheLimitKB = v
		}
		return true, ok
	}
	return false, false
}

// doNotTrackValue accepts the text form and the legacy numeric form.
func doNotTrackValue(value any) (DoNotTrackPolicy, bool) {
	if s, ok := value.(string); ok {
		if p, ok := session.ParseDoNotTrackPolicy(s); ok {
			return p, true
		}
	}
	if p, ok := value.(DoNotTrackPolicy); ok {
		return p, p >= Skip && p <= DoNotAllowToTrack
	}
	if n, ok := config.IntValue(value); ok && n >= int(Skip) && n <= int(DoNotAllowToTrack) {
		return DoNotTrackPolicy(n), true
	}
	return Skip, false
}

func stateFromOptions(values map[string]any) *State {
	st := builtinState()
	for key, value := range values {
		if known, ok := st.applyOption(key, value); known && !ok {
			log.Warnf("Ignoring option %s with unexpected value %v (%T)", key, value, value)
		}
	}
	return st
}
