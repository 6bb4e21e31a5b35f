package useragents

import (
	"io"
	"runtime"

	"github.com/valyala/fasttemplate"
)

// Placeholder names understood in user-agent values.
const (
	VarPlatform           = "platform"
	VarEngineVersion      = "engineVersion"
	VarApplicationVersion = "applicationVersion"
)

// DefaultEngineVersion is the engine version advertised by the default user agent.
const DefaultEngineVersion = "605.1.15"

// Variables maps placeholder names to their values.
type Variables map[string]string

// DefaultVariables returns placeholder values for this process.
func DefaultVariables(applicationVersion string) Variables {
	return Variables{
		VarPlatform:           Platform(runtime.GOOS, runtime.GOARCH),
		VarEngineVersion:      DefaultEngineVersion,
		VarApplicationVersion: applicationVersion,
	}
}

// Platform returns the platform token used inside User-Agent strings.
func Platform(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "i686"
	case "arm64":
		arch = "aarch64"
	}

	switch goos {
	case "windows":
		if goarch == "amd64" || goarch == "arm64" {
			return "Windows NT 10.0; Win64; x64"
		}
		return "Windows NT 10.0"
	case "darwin":
		return "Macintosh; Intel Mac OS X 10_15_7"
	case "freebsd":
		return "X11; FreeBSD " + arch
	default:
		return "X11; Linux " + arch
	}
}

// Expand replaces {{placeholders}} in value. Unknown placeholders are kept verbatim.
func Expand(value string, vars Variables) string {
	return fasttemplate.ExecuteFuncString(value, "{{", "}}", func(w io.Writer, tag string) (int, error) {
		if v, ok := vars[tag]; ok {
			return w.Write([]byte(v))
		}
		return w.Write([]byte("{{" + tag + "}}"))
	})
}

// Expanded returns a copy of info with its value expanded.
func (i Info) Expanded(vars Variables) Info {
	i.Value = Expand(i.Value, vars)
	return i
}
