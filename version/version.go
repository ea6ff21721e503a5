package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time using -ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info is a point-in-time description of the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get assembles build information, preferring ldflags values and filling
// gaps from the binary's embedded VCS metadata.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.Date == "" {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.Date = t.UTC().Format(time.RFC3339)
				}
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// Short returns a compact version string such as "1.2.0" or
// "dev-4f9c2ab" for logs and summaries.
func Short() string {
	info := Get()
	if info.Commit == "" {
		return info.Version
	}
	return fmt.Sprintf("%s-%s", info.Version, info.Commit)
}

// String renders the full single-line build description.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s = fmt.Sprintf("%s (%s)", s, i.Commit)
	}
	if i.Modified {
		s += " dirty"
	}
	if i.Date != "" {
		s += fmt.Sprintf(" built %s", i.Date)
	}
	return s
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
