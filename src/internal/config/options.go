package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
)

// Option keys understood by the store and the network policy registry.
const (
	OptionAcceptLanguage               = "Network/AcceptLanguage"
	OptionDoNotTrack                   = "Network/DoNotTrack"
	OptionEnableReferrer               = "Network/EnableReferrer"
	OptionWorkingOffline               = "Network/WorkingOffline"
	OptionUseSystemProxyAuthentication = "Network/UseSystemProxyAuthentication"
	OptionUserAgent                    = "Network/UserAgent"
	OptionCiphers                      = "Security/Ciphers"
	OptionDiskCacheLimit               = "Cache/DiskCacheLimit"
)

type optionDefinition struct {
	key string
	get func(c *Config) any
	set func(c *Config, value any) error
}

// optionDefinitions is ordered; notifications follow this order.
var optionDefinitions = []optionDefinition{
	{
		key: OptionAcceptLanguage,
		get: func(c *Config) any { return c.Network.GetAcceptLanguage() },
		set: func(c *Config, value any) error {
			v, ok := StringValue(value)
			if !ok {
				return typeError(OptionAcceptLanguage, "string", value)
			}
			if err := validate.Var(v, "omitempty,accept_language"); err != nil {
				return nperrors.NewValidationError(fmt.Sprintf("invalid %s: %q", OptionAcceptLanguage, v), err)
			}
			c.network().AcceptLanguage = &v
			return nil
		},
	},
	{
		key: OptionDoNotTrack,
		get: func(c *Config) any { return c.Network.GetDoNotTrack() },
		set: func(c *Config, value any) error {
			v, ok := StringValue(value)
			if !ok {
				return typeError(OptionDoNotTrack, "string", value)
			}
			if err := validate.Var(v, "required,oneof=skip allow doNotAllow"); err != nil {
				return nperrors.NewValidationError(fmt.Sprintf("invalid %s: %q", OptionDoNotTrack, v), err)
			}
			c.network().DoNotTrack = v
			return nil
		},
	},
	{
		key: OptionEnableReferrer,
		get: func(c *Config) any { return c.Network.IsReferrerEnabled() },
		set: func(c *Config, value any) error {
			v, ok := BoolValue(value)
			if !ok {
				return typeError(OptionEnableReferrer, "bool", value)
			}
			c.network().EnableReferrer = &v
			return nil
		},
	},
	{
		key: OptionWorkingOffline,
		get: func(c *Config) any { return c.Network.IsWorkingOffline() },
		set: func(c *Config, value any) error {
			v, ok := BoolValue(value)
			if !ok {
				return typeError(OptionWorkingOffline, "bool", value)
			}
			c.network().WorkingOffline = v
			return nil
		},
	},
	{
		key: OptionUseSystemProxyAuthentication,
		get: func(c *Config) any { return c.Network.IsUsingSystemProxyAuthentication() },
		set: func(c *Config, value any) error {
			v, ok := BoolValue(value)
			if !ok {
				return typeError(OptionUseSystemProxyAuthentication, "bool", value)
			}
			c.network().UseSystemProxyAuthentication = v
			return nil
		},
	},
	{
		key: OptionUserAgent,
		get: func(c *Config) any { return c.Network.GetUserAgent() },
		set: func(c *Config, value any) error {
			v, ok := StringValue(value)
			if !ok {
				return typeError(OptionUserAgent, "string", value)
			}
			if err := validate.Var(v, "required,useragent_id"); err != nil {
				return nperrors.NewValidationError(fmt.Sprintf("invalid %s: %q", OptionUserAgent, v), err)
			}
			c.network().UserAgent = v
			return nil
		},
	},
	{
		key: OptionCiphers,
		get: func(c *Config) any { return c.Security.GetCiphers() },
		set: func(c *Config, value any) error {
			v, ok := StringListValue(value)
			if !ok {
				return typeError(OptionCiphers, "list of strings", value)
			}
			if err := validate.Var(v, "dive,cipher_name"); err != nil {
				return nperrors.NewValidationError(fmt.Sprintf("invalid %s: %v", OptionCiphers, v), err)
			}
			if c.Security == nil {
				c.Security = &SecurityConfig{}
			}
			c.Security.Ciphers = v
			return nil
		},
	},
	{
		key: OptionDiskCacheLimit,
		get: func(c *Config) any { return c.Cache.GetDiskCacheLimitKB() },
		set: func(c *Config, value any) error {
			v, ok := IntValue(value)
			if !ok || v < 0 {
				return typeError(OptionDiskCacheLimit, "non-negative integer", value)
			}
			if c.Cache == nil {
				c.Cache = &CacheConfig{}
			}
			c.Cache.DiskCacheLimitKB = v
			return nil
		},
	},
}

// OptionKeys returns every known option key in notification order.
func OptionKeys() []string {
	keys := make([]string, 0, len(optionDefinitions))
	for _, def := range optionDefinitions {
		keys = append(keys, def.key)
	}
	return keys
}

// IsKnownOption reports whether key is a defined option.
func IsKnownOption(key string) bool {
	return findOption(key) != nil
}

// Options returns the effective value of every option, defaults applied.
func (c *Config) Options() map[string]any {
	values := make(map[string]any, len(optionDefinitions))
	for _, def := range optionDefinitions {
		values[def.key] = def.get(c)
	}
	return values
}

// GetOption returns the effective value of a single option.
func (c *Config) GetOption(key string) (any, error) {
	def := findOption(key)
	if def == nil {
		return nil, nperrors.NewUnknownOptionError(key)
	}
	return def.get(c), nil
}

// SetOption coerces and validates value, then stores it in the matching section.
func (c *Config) SetOption(key string, value any) error {
	def := findOption(key)
	if def == nil {
		return nperrors.NewUnknownOptionError(key)
	}
	return def.set(c, value)
}

func (c *Config) network() *NetworkConfig {
	if c.Network == nil {
		c.Network = &NetworkConfig{}
	}
	return c.Network
}

func findOption(key string) *optionDefinition {
	for i := range optionDefinitions {
		if optionDefinitions[i].key == key {
			return &optionDefinitions[i]
		}
	}
	return nil
}

func typeError(key, want string, value any) error {
	return nperrors.NewValidationError(fmt.Sprintf("option %s expects %s, got %T", key, want, value), nil)
}

// BoolValue coerces option values coming from TOML, JSON or the command line.
func BoolValue(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

// StringValue accepts only strings; numbers are not silently stringified.
func StringValue(value any) (string, bool) {
	v, ok := value.(string)
	return strings.TrimSpace(v), ok
}

// IntValue accepts integers, integral floats (JSON numbers) and numeric strings.
func IntValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint32:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	}
	return 0, false
}

// StringListValue accepts []string, []any of strings or a comma-separated string.
func StringListValue(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, true
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true
	}
	return nil, false
}
