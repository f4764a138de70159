package version

import (
	"runtime/debug"
	"strings"
)

// FromBuildInfo describes the running binary for the --version flag.
func FromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "compact-react (version unavailable)"
	}

	return describe(info)
}

func describe(info *debug.BuildInfo) string {
	var b strings.Builder

	b.WriteString("compact-react")

	if v := info.Main.Version; v != "" && v != "(devel)" {
		b.WriteString(" " + v)
	}

	settings := make(map[string]string, len(info.Settings))

	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}

		b.WriteString(" (" + settings["vcs"] + " " + rev)

		if settings["vcs.modified"] == "true" {
			b.WriteString(", dirty")
		}

		if ts := settings["vcs.time"]; ts != "" {
			b.WriteString(", " + ts)
		}

		b.WriteString(")")
	}

	if info.GoVersion != "" {
		b.WriteString(" " + info.GoVersion)
	}

	return b.String()
}
