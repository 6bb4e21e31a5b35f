package config

import (
	"path/filepath"

	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// CurrentConfigVersion is the configuration layout written by this release.
// Older layouts are rewritten by the config-v2 profile migration.
const CurrentConfigVersion = 2

type Config struct {
	// ConfigVersion is the configuration file version.
	ConfigVersion uint8 `toml:"config_version" json:"config_version"`
	// General holds paths and daemon settings.
	General *GeneralConfig `toml:"general" json:"general"`
	// Network holds the networking policy options.
	Network *NetworkConfig `toml:"network" json:"network"`
	// Cache holds disk cache settings.
	Cache *CacheConfig `toml:"cache" json:"cache"`
	// Security holds TLS settings.
	Security *SecurityConfig `toml:"security" json:"security"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// ProfileDir is the directory holding cookies, the disk cache and migration state. Relative paths are resolved against the config directory.
	ProfileDir string `toml:"profile_dir" json:"profile_dir" validate:"required"`
	// UserAgentsFile is the user-agent resource (TOML). Relative paths are resolved against the config directory.
	UserAgentsFile string `toml:"user_agents_file" json:"user_agents_file"`
	// APIBindAddress is the address of the local HTTP API (default: 127.0.0.1:8089).
	APIBindAddress string `toml:"api_bind_address" json:"api_bind_address" validate:"hostport_or_empty"`
	// ConfigPollIntervalSeconds is how often the config file is checked for changes (0 = default 5s).
	ConfigPollIntervalSeconds int `toml:"config_poll_interval_seconds" json:"config_poll_interval_seconds" validate:"gte=0"`
}

type NetworkConfig struct {
	// AcceptLanguage is sent as the Accept-Language header. Empty disables the header.
	AcceptLanguage *string `toml:"accept_language" json:"accept_language,omitempty" validate:"omitempty,accept_language"`
	// DoNotTrack is the Do-Not-Track policy: skip, allow or doNotAllow (default: skip).
	DoNotTrack string `toml:"do_not_track" json:"do_not_track" validate:"omitempty,oneof=skip allow doNotAllow"`
	// EnableReferrer allows sending the Referer header (default: true).
	EnableReferrer *bool `toml:"enable_referrer" json:"enable_referrer,omitempty"`
	// WorkingOffline serves requests from the disk cache only.
	WorkingOffline bool `toml:"working_offline" json:"working_offline"`
	// UseSystemProxyAuthentication keeps credentials found in the system proxy settings.
	UseSystemProxyAuthentication bool `toml:"use_system_proxy_authentication" json:"use_system_proxy_authentication"`
	// UserAgent is the identifier of the user agent used by new sessions (default: default).
	UserAgent string `toml:"user_agent" json:"user_agent" validate:"omitempty,useragent_id"`
}

type CacheConfig struct {
	// DiskCacheLimitKB is the maximum disk cache size in KiB (default: 51200, 0 = default).
	DiskCacheLimitKB int `toml:"disk_cache_limit_kb" json:"disk_cache_limit_kb" validate:"gte=0"`
}

type SecurityConfig struct {
	// Ciphers restricts the TLS cipher suites offered by new sessions. "default" expands to the platform list.
	Ciphers []string `toml:"ciphers" json:"ciphers" validate:"dive,cipher_name"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

func (c *Config) GetConfigFilePath() string {
	return c._absConfigFilePath
}

func (c *Config) GetAbsProfileDir() string {
	dir := DefaultProfileDir
	if c.General != nil && c.General.ProfileDir != "" {
		dir = c.General.ProfileDir
	}
	return utils.GetAbsolutePath(dir, c.GetConfigDir())
}

func (c *Config) GetAbsUserAgentsPath() string {
	file := DefaultUserAgentsFile
	if c.General != nil && c.General.UserAgentsFile != "" {
		file = c.General.UserAgentsFile
	}
	return utils.GetAbsolutePath(file, c.GetConfigDir())
}

func (g *GeneralConfig) GetAPIBindAddress() string {
	if g == nil || g.APIBindAddress == "" {
		return DefaultAPIBindAddress
	}
	return g.APIBindAddress
}

func (g *GeneralConfig) GetConfigPollIntervalSeconds() int {
	if g == nil || g.ConfigPollIntervalSeconds <= 0 {
		return DefaultConfigPollIntervalSeconds
	}
	return g.ConfigPollIntervalSeconds
}

func (n *NetworkConfig) GetAcceptLanguage() string {
	if n == nil || n.AcceptLanguage == nil {
		return DefaultAcceptLanguage
	}
	return *n.AcceptLanguage
}

func (n *NetworkConfig) GetDoNotTrack() string {
	if n == nil || n.DoNotTrack == "" {
		return DefaultDoNotTrack
	}
	return n.DoNotTrack
}

func (n *NetworkConfig) IsReferrerEnabled() bool {
	if n == nil || n.EnableReferrer == nil {
		return true
	}
	return *n.EnableReferrer
}

func (n *NetworkConfig) IsWorkingOffline() bool {
	return n != nil && n.WorkingOffline
}

func (n *NetworkConfig) IsUsingSystemProxyAuthentication() bool {
	return n != nil && n.UseSystemProxyAuthentication
}

func (n *NetworkConfig) GetUserAgent() string {
	if n == nil || n.UserAgent == "" {
		return DefaultUserAgent
	}
	return n.UserAgent
}

func (c *CacheConfig) GetDiskCacheLimitKB() int {
	if c == nil || c.DiskCacheLimitKB <= 0 {
		return DefaultDiskCacheLimitKB
	}
	return c.DiskCacheLimitKB
}

func (s *SecurityConfig) GetCiphers() []string {
	if s == nil || len(s.Ciphers) == 0 {
		return []string{CiphersDefault}
	}
	return append([]string(nil), s.Ciphers...)
}
