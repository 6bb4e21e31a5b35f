package config

const (
	DefaultProfileDir                = "profile"
	DefaultUserAgentsFile            = "useragents.toml"
	DefaultAPIBindAddress            = "127.0.0.1:8089"
	DefaultConfigPollIntervalSeconds = 5

	DefaultAcceptLanguage   = "en-US,en;q=0.8"
	DefaultDoNotTrack       = "skip"
	DefaultUserAgent        = "default"
	DefaultDiskCacheLimitKB = 51200

	// CiphersDefault in the cipher list stands for the platform default suites.
	CiphersDefault = "default"
)

// NewDefaultConfig returns a configuration with every section present and
// defaults filled in, bound to configPath for WriteConfig.
func NewDefaultConfig(configPath string) *Config {
	acceptLanguage := DefaultAcceptLanguage
	enableReferrer := true

	return &Config{
		ConfigVersion: CurrentConfigVersion,
		General: &GeneralConfig{
			ProfileDir:                DefaultProfileDir,
			UserAgentsFile:            DefaultUserAgentsFile,
			APIBindAddress:            DefaultAPIBindAddress,
			ConfigPollIntervalSeconds: DefaultConfigPollIntervalSeconds,
		},
		Network: &NetworkConfig{
			AcceptLanguage: &acceptLanguage,
			DoNotTrack:     DefaultDoNotTrack,
			EnableReferrer: &enableReferrer,
			UserAgent:      DefaultUserAgent,
		},
		Cache: &CacheConfig{
			DiskCacheLimitKB: DefaultDiskCacheLimitKB,
		},
		Security: &SecurityConfig{
			Ciphers: []string{CiphersDefault},
		},
		_absConfigFilePath: configPath,
	}
}
