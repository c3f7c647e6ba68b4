package version

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""
)

// trackedModules are the dependencies whose versions aemctl reports.
var trackedModules = []string{
	"github.com/antchfx/xmlquery",
	"github.com/spf13/cobra",
	"github.com/tidwall/gjson",
	"go.opentelemetry.io/otel",
}

// Info describes the running build.
type Info struct {
	Version   string            `json:"version"`
	Module    string            `json:"module,omitempty"`
	GitCommit string            `json:"git_commit"`
	GitBranch string            `json:"git_branch"`
	BuildTime string            `json:"build_time"`
	GoVersion string            `json:"go_version"`
	BuildDate time.Time         `json:"build_date"`
	IsRelease bool              `json:"is_release"`
	IsDirty   bool              `json:"is_dirty"`
	Modules   map[string]string `json:"modules,omitempty"`
}

// GetVersionInfo returns the build information, filling gaps in the -ldflags
// values from the binary's embedded build info.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(info, buildInfo)
	}

	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}
	return info
}

func applyBuildInfo(info *Info, bi *debug.BuildInfo) {
	info.Module = bi.Main.Path
	if info.GoVersion == "" {
		info.GoVersion = bi.GoVersion
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = setting.Value
				if len(info.GitCommit) > 7 {
					info.GitCommit = info.GitCommit[:7]
				}
			}
		case "vcs.modified":
			info.IsDirty = setting.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = setting.Value
				}
			}
		}
	}
	for _, dep := range bi.Deps {
		for _, tracked := range trackedModules {
			if dep.Path != tracked {
				continue
			}
			if info.Modules == nil {
				info.Modules = make(map[string]string)
			}
			info.Modules[dep.Path] = dep.Version
		}
	}
}

// GetShortVersion returns "version-commit", with a "-dirty" suffix for
// modified trees.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit != "" {
		if info.IsDirty {
			return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
		}
		return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	}
	return info.Version
}

// GetFullVersion returns the short version plus a non-default branch and the
// build date.
func GetFullVersion() string {
	return GetVersionInfo().full()
}

func (i *Info) full() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		parts = append(parts, i.GitBranch)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	v := strings.Join(parts, "-")
	if !i.BuildDate.IsZero() {
		v += fmt.Sprintf(" (built %s)", i.BuildDate.Format("2006-01-02T15:04:05Z"))
	}
	return v
}

// String renders the info as the text printed by "aemctl version".
func (i *Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "aemctl %s\n", i.full())
	if i.GoVersion != "" {
		fmt.Fprintf(&b, "go:     %s\n", i.GoVersion)
	}
	if i.Module != "" {
		fmt.Fprintf(&b, "module: %s\n", i.Module)
	}
	names := make([]string, 0, len(i.Modules))
	for name := range i.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s %s\n", name, i.Modules[name])
	}
	return strings.TrimRight(b.String(), "\n")
}
