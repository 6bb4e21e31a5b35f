package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

func LoadConfig(configPath string) (*Config, error) {
	configFile, err := absPath(configPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Errorf("Configuration file not found: %s", configFile)
		return nil, nperrors.NewConfigError(fmt.Sprintf("configuration file not found: %s", configFile), err)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, nperrors.NewConfigError("failed to read config file", err)
	}

	config, err := ParseConfig(content)
	if err != nil {
		return nil, err
	}
	config._absConfigFilePath = configFile

	if config.ConfigVersion < CurrentConfigVersion {
		log.Warnf("Configuration version %d is outdated (current: %d), run 'netpolicy upgrade-profile'", config.ConfigVersion, CurrentConfigVersion)
	}

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Profile directory: %s", config.GetAbsProfileDir())

	return config, nil
}

// ParseConfig decodes TOML content. The result is not bound to a file path.
func ParseConfig(content []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(content, &config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
		}
		return nil, nperrors.NewConfigError("failed to parse config file", err)
	}
	return &config, nil
}

// CreateDefaultConfig writes a default configuration to configPath unless a
// file already exists there.
func CreateDefaultConfig(configPath string) (*Config, error) {
	configFile, err := absPath(configPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(configFile); err == nil {
		return nil, nperrors.NewConfigError(fmt.Sprintf("configuration file already exists: %s", configFile), nil)
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return nil, nperrors.NewConfigError("failed to create config directory", err)
	}

	cfg := NewDefaultConfig(configFile)
	if err := cfg.WriteConfig(); err != nil {
		return nil, err
	}
	log.Infof("Default configuration written to %s", configFile)
	return cfg, nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

// WriteConfig writes the configuration back to the file it was loaded from.
// The file is replaced atomically so the watcher never reads a partial write.
func (c *Config) WriteConfig() error {
	if c._absConfigFilePath == "" {
		return nperrors.NewConfigError("configuration is not bound to a file", nil)
	}
	config, err := c.SerializeConfig()
	if err != nil {
		return nperrors.NewConfigError("failed to serialize config", err)
	}

	if err := utils.WriteFileAtomic(c._absConfigFilePath, config.Bytes(), 0644); err != nil {
		return nperrors.NewConfigError("failed to write config file", err)
	}
	return nil
}

// Clone returns a deep copy bound to the same file.
func (c *Config) Clone() *Config {
	out := &Config{
		ConfigVersion:      c.ConfigVersion,
		_absConfigFilePath: c._absConfigFilePath,
	}
	if c.General != nil {
		general := *c.General
		out.General = &general
	}
	if c.Network != nil {
		network := *c.Network
		if c.Network.AcceptLanguage != nil {
			v := *c.Network.AcceptLanguage
			network.AcceptLanguage = &v
		}
		if c.Network.EnableReferrer != nil {
			v := *c.Network.EnableReferrer
			network.EnableReferrer = &v
		}
		out.Network = &network
	}
	if c.Cache != nil {
		cache := *c.Cache
		out.Cache = &cache
	}
	if c.Security != nil {
		out.Security = &SecurityConfig{Ciphers: append([]string(nil), c.Security.Ciphers...)}
	}
	return out
}

func absPath(configPath string) (string, error) {
	configFile := filepath.Clean(configPath)
	if filepath.IsAbs(configFile) {
		return configFile, nil
	}
	path, err := filepath.Abs(configFile)
	if err != nil {
		return "", nperrors.NewConfigError("failed to get absolute path", err)
	}
	return path, nil
}
