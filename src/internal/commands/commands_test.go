package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/api"
	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/cookies"
	"github.com/maksimkurb/netpolicy/src/internal/registry"
)

const testAgents = `
[[user_agent]]
identifier = "firefox"
title = "Firefox"
value = "Mozilla/5.0 ({{platform}}; rv:128.0) Gecko/20100101 Firefox/128.0"
`

// writeTestConfig creates a configuration file with a profile directory
// and a user-agent file next to it.
func writeTestConfig(t *testing.T, mutate func(*config.Config)) *AppContext {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "netpolicy.toml")

	cfg := config.NewDefaultConfig(path)
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.WriteConfig(); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.DefaultUserAgentsFile), []byte(testAgents), 0644); err != nil {
		t.Fatalf("failed to write user agents: %v", err)
	}

	return &AppContext{
		ConfigPath: path,
		Version:    api.VersionInfo{Version: "2.0.0"},
	}
}

func TestPolicyCommand_JSON(t *testing.T) {
	ctx := writeTestConfig(t, func(cfg *config.Config) {
		cfg.Network.UserAgent = "firefox"
		cfg.Network.DoNotTrack = "doNotAllow"
	})

	cmd := CreatePolicyCommand()
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Init([]string{"-json"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var resp api.PolicyResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output %q: %v", out.String(), err)
	}
	if resp.UserAgent.Identifier != "firefox" {
		t.Errorf("expected firefox, got %q", resp.UserAgent.Identifier)
	}
	if strings.Contains(resp.UserAgentValue, "{{platform}}") {
		t.Errorf("placeholder not expanded: %q", resp.UserAgentValue)
	}
	if resp.State.DoNotTrack != registry.DoNotAllowToTrack {
		t.Errorf("expected doNotAllow, got %v", resp.State.DoNotTrack)
	}
}

func TestPolicyCommand_Text(t *testing.T) {
	ctx := writeTestConfig(t, nil)

	cmd := CreatePolicyCommand()
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Init(nil, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, want := range []string{"User-Agent header:", "netpolicy/2.0.0", "Do-Not-Track:", "skip"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output misses %q:\n%s", want, out.String())
		}
	}
}

func TestUserAgentsCommand(t *testing.T) {
	ctx := writeTestConfig(t, func(cfg *config.Config) {
		cfg.Network.UserAgent = "firefox"
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"expanded", nil, "rv:128.0"},
		{"raw", []string{"-raw"}, "{{platform}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := CreateUserAgentsCommand()
			var out bytes.Buffer
			cmd.out = &out
			if err := cmd.Init(tt.args, ctx); err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			if err := cmd.Run(); err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			text := out.String()
			if !strings.Contains(text, tt.want) {
				t.Errorf("output misses %q:\n%s", tt.want, text)
			}
			lines := strings.Split(strings.TrimSpace(text), "\n")
			if len(lines) != 3 {
				t.Fatalf("expected header, default and firefox, got:\n%s", text)
			}
			if !strings.HasPrefix(lines[2], "*") || !strings.Contains(lines[2], "firefox") {
				t.Errorf("current user agent is not marked: %q", lines[2])
			}
		})
	}
}

func TestClearCookiesCommand(t *testing.T) {
	ctx := writeTestConfig(t, nil)
	cfg, err := config.LoadConfig(ctx.ConfigPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	now := time.Now()
	entries := []cookies.Entry{
		{Name: "old", Value: "1", Domain: "example.com", Path: "/", Host: "example.com", HostOnly: true,
			Expires: now.Add(24 * time.Hour), Created: now.Add(-48 * time.Hour)},
		{Name: "new", Value: "2", Domain: "example.com", Path: "/", Host: "example.com", HostOnly: true,
			Expires: now.Add(24 * time.Hour), Created: now.Add(-10 * time.Minute)},
	}
	profile := cfg.GetAbsProfileDir()
	if err := os.MkdirAll(profile, 0755); err != nil {
		t.Fatal(err)
	}
	if err := cookies.WriteFile(filepath.Join(profile, cookies.FileName), entries); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cmd := CreateClearCookiesCommand()
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Init([]string{"-period-hours", "1"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Removed 1 cookie(s)") {
		t.Errorf("unexpected output %q", out.String())
	}

	jar, err := cookies.New(cookies.Options{Path: filepath.Join(profile, cookies.FileName)})
	if err != nil {
		t.Fatalf("failed to reopen jar: %v", err)
	}
	remaining := jar.Entries()
	if len(remaining) != 1 || remaining[0].Name != "old" {
		t.Errorf("expected only the old cookie to survive, got %+v", remaining)
	}
}

func TestClearCommand_RejectsNegativePeriod(t *testing.T) {
	ctx := writeTestConfig(t, nil)
	cmd := CreateClearCacheCommand()
	if err := cmd.Init([]string{"-period-hours", "-2"}, ctx); err == nil {
		t.Error("expected an error for a negative period")
	}
}

func TestClearCacheCommand(t *testing.T) {
	ctx := writeTestConfig(t, nil)

	cmd := CreateClearCacheCommand()
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Init(nil, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Removed 0 cache entries") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestUpgradeProfileCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "netpolicy.toml")
	legacy := `
[general]
profile_dir = "profile"
user_agent = "firefox"

[network]
do_not_track = 2
`
	if err := os.WriteFile(configPath, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := &AppContext{ConfigPath: configPath}

	dry := CreateUpgradeProfileCommand()
	var dryOut bytes.Buffer
	dry.out = &dryOut
	if err := dry.Init([]string{"-dry-run"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := dry.Run(); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(dryOut.String(), "config-v2") {
		t.Errorf("dry run should list config-v2, got %q", dryOut.String())
	}

	cmd := CreateUpgradeProfileCommand()
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Init([]string{"-backup"}, ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if cmd.ProfileDir != filepath.Join(dir, "profile") {
		t.Errorf("unexpected profile dir %s", cmd.ProfileDir)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "applied   config-v2") {
		t.Errorf("unexpected report %q", out.String())
	}
	if _, err := os.Stat(configPath + ".bak"); err != nil {
		t.Errorf("expected a backup: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("upgraded config does not load: %v", err)
	}
	if cfg.Network.GetDoNotTrack() != "doNotAllow" || cfg.Network.GetUserAgent() != "firefox" {
		t.Errorf("unexpected upgraded network section %+v", cfg.Network)
	}
}

func TestStringList(t *testing.T) {
	var l stringList
	l.Set("config-v2, cookies-json")
	l.Set("other")
	if got := l.String(); got != "config-v2,cookies-json,other" {
		t.Errorf("unexpected list %q", got)
	}
}
