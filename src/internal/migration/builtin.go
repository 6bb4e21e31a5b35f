package migration

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/cookies"
	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// LegacyCookiesFileName is the tab-separated cookie file of older profiles.
const LegacyCookiesFileName = "cookies.dat"

// Default returns the built-in migrations in the order they must run.
func Default(configPath, profileDir string) []Migration {
	return []Migration{
		ConfigV2(configPath),
		CookiesJSON(profileDir),
	}
}

// ConfigV2 moves a version 1 configuration to the current layout: the
// user agent moves from [general] to [network] and the numeric Do-Not-Track
// value becomes its text form.
func ConfigV2(configPath string) Migration {
	return Migration{
		Name:  "config-v2",
		Title: "Upgrade configuration file to version 2",
		CanMigrate: func() (bool, error) {
			if !utils.FileExists(configPath) {
				return false, nil
			}
			raw, err := readRawConfig(configPath)
			if err != nil {
				return false, err
			}
			return needsConfigV2(raw), nil
		},
		Backup: func() error {
			backup, err := BackupFile(configPath)
			if err == nil {
				log.Infof("Configuration backed up to %s", backup)
			}
			return err
		},
		Migrate: func() error {
			raw, err := readRawConfig(configPath)
			if err != nil {
				return err
			}
			content, err := upgradeConfigV2(raw)
			if err != nil {
				return err
			}
			return utils.WriteFileAtomic(configPath, content, 0644)
		},
	}
}

func readRawConfig(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]any)
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, nperrors.NewConfigError("failed to parse config file", err)
	}
	return raw, nil
}

func needsConfigV2(raw map[string]any) bool {
	if version, ok := raw["config_version"].(int64); !ok || version < config.CurrentConfigVersion {
		return true
	}
	if general, ok := raw["general"].(map[string]any); ok {
		if _, ok := general["user_agent"]; ok {
			return true
		}
	}
	if network, ok := raw["network"].(map[string]any); ok {
		if _, ok := network["do_not_track"].(int64); ok {
			return true
		}
	}
	return false
}

func upgradeConfigV2(raw map[string]any) ([]byte, error) {
	general, ok := raw["general"].(map[string]any)
	if !ok {
		general = map[string]any{"profile_dir": config.DefaultProfileDir}
		raw["general"] = general
	}
	network, ok := raw["network"].(map[string]any)
	if !ok {
		network = make(map[string]any)
		raw["network"] = network
	}

	if ua, ok := general["user_agent"]; ok {
		if _, set := network["user_agent"]; !set {
			network["user_agent"] = ua
		}
		delete(general, "user_agent")
	}
	if n, ok := network["do_not_track"].(int64); ok {
		network["do_not_track"] = legacyDoNotTrack(n)
	}
	raw["config_version"] = int64(config.CurrentConfigVersion)

	content, err := toml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ParseConfig(content)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}
	buf, err := cfg.SerializeConfig()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func legacyDoNotTrack(n int64) string {
	switch n {
	case 1:
		return "allow"
	case 2:
		return "doNotAllow"
	default:
		return "skip"
	}
}

// CookiesJSON converts the legacy tab-separated cookie file into the JSON
// cookie store. The legacy file is removed afterwards.
func CookiesJSON(profileDir string) Migration {
	legacy := filepath.Join(profileDir, LegacyCookiesFileName)
	target := filepath.Join(profileDir, cookies.FileName)

	return Migration{
		Name:  "cookies-json",
		Title: "Convert cookie storage to JSON",
		CanMigrate: func() (bool, error) {
			return utils.FileExists(legacy) && !utils.FileExists(target), nil
		},
		Backup: func() error {
			backup, err := BackupFile(legacy)
			if err == nil {
				log.Infof("Cookies backed up to %s", backup)
			}
			return err
		},
		Migrate: func() error {
			file, err := os.Open(legacy)
			if err != nil {
				return err
			}
			entries, err := parseLegacyCookies(file, time.Now())
			utils.CloseOrWarn(file)
			if err != nil {
				return err
			}
			if err := cookies.WriteFile(target, entries); err != nil {
				return err
			}
			log.Infof("Converted %d cookie(s) to %s", len(entries), target)
			return os.Remove(legacy)
		},
	}
}

// parseLegacyCookies reads Netscape-style lines:
// domain, include subdomains, path, secure, expiry (unix), name, value.
func parseLegacyCookies(r io.Reader, now time.Time) ([]cookies.Entry, error) {
	var entries []cookies.Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, "#HttpOnly_") {
			httpOnly = true
			line = strings.TrimPrefix(line, "#HttpOnly_")
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			log.Warnf("Skipping malformed cookie line %d: expected 7 fields, got %d", lineNo, len(fields))
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			log.Warnf("Skipping malformed cookie line %d: bad expiry %q", lineNo, fields[4])
			continue
		}

		domain := strings.ToLower(strings.TrimPrefix(fields[0], "."))
		if domain == "" || fields[5] == "" {
			log.Warnf("Skipping malformed cookie line %d: missing domain or name", lineNo)
			continue
		}

		path := fields[2]
		if path == "" || path[0] != '/' {
			path = "/"
		}

		e := cookies.Entry{
			Name:     fields[5],
			Value:    fields[6],
			Domain:   domain,
			Host:     domain,
			Path:     path,
			HostOnly: !strings.EqualFold(fields[1], "TRUE"),
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			HttpOnly: httpOnly,
			Created:  now,
		}
		if expiry > 0 {
			e.Expires = time.Unix(expiry, 0).UTC()
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
