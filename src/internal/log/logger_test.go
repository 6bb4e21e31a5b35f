package log

import (
	"bytes"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, f func()) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(nil, nil) })
	f()
	return out.String(), errOut.String()
}

func TestLevelsRouting(t *testing.T) {
	SetVerbose(false)
	stdout, stderr := captureOutput(t, func() {
		Debugf("hidden %d", 1)
		Infof("info %s", "message")
		Warnf("warn message")
		Errorf("error message")
	})

	if strings.Contains(stdout, "hidden") {
		t.Errorf("debug message must not be printed without verbose mode: %q", stdout)
	}
	if !strings.Contains(stdout, "[INF]") || !strings.Contains(stdout, "info message") {
		t.Errorf("expected info message in stdout, got %q", stdout)
	}
	if !strings.Contains(stdout, "[WRN]") {
		t.Errorf("expected warning in stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "[ERR]") || !strings.Contains(stderr, "error message") {
		t.Errorf("expected error message in stderr, got %q", stderr)
	}
}

func TestSetVerbose(t *testing.T) {
	SetVerbose(true)
	defer SetVerbose(false)

	if !IsVerbose() {
		t.Fatal("expected verbose mode to be enabled")
	}

	stdout, _ := captureOutput(t, func() {
		Debugf("trace %s", "details")
	})
	if !strings.Contains(stdout, "[DBG]") || !strings.Contains(stdout, "trace details") {
		t.Errorf("expected debug message, got %q", stdout)
	}
}

func TestDisableLogs(t *testing.T) {
	DisableLogs()
	defer EnableLogs()

	if !IsDisabled() {
		t.Fatal("expected logs to be disabled")
	}

	stdout, stderr := captureOutput(t, func() {
		Infof("info")
		Errorf("error")
	})
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output, got stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestForceStdErr(t *testing.T) {
	SetForceStdErr(true)
	defer SetForceStdErr(false)

	stdout, stderr := captureOutput(t, func() {
		Infof("to stderr")
	})
	if stdout != "" {
		t.Errorf("expected empty stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "to stderr") {
		t.Errorf("expected message in stderr, got %q", stderr)
	}
}
