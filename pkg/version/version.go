// Package version carries build information injected through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// GitVersion is the semantic version of the build.
	GitVersion = "v0.0.0-master+$Format:%h$"
	// GitCommit is the sha1 from git, output of $(git rev-parse HEAD).
	GitCommit = "$Format:%H$"
	// BuildDate in ISO8601 format, output of $(date -u +'%Y-%m-%dT%H:%M:%SZ').
	BuildDate = "1970-01-01T00:00:00Z"
)

// Info contains versioning information.
type Info struct {
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit"`
	BuildDate  string `json:"buildDate"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// String returns the git version.
func (info Info) String() string {
	return info.GitVersion
}

// Get returns the overall codebase version.
func Get() Info {
	return Info{
		GitVersion: GitVersion,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
