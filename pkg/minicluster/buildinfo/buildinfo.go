// Package buildinfo reports the version and VCS state compiled into the
// minicluster binary.
package buildinfo

import (
	"runtime/debug"
	"strings"
	"sync"
)

const defaultVersion = "devel"

// Version can be set at link time with:
//
//	-ldflags "-X github.com/fiam/minicluster/pkg/minicluster/buildinfo.Version=vX.Y.Z"
var Version = defaultVersion

type Info struct {
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Dirty      bool   `json:"dirty"`
	GoVersion  string `json:"go_version,omitempty"`
}

var (
	current     Info
	currentOnce sync.Once
	readBuild   = debug.ReadBuildInfo
)

func Current() Info {
	currentOnce.Do(func() {
		current = detect()
	})
	return current
}

func detect() Info {
	info := Info{
		Version: strings.TrimSpace(Version),
	}
	if info.Version == "" {
		info.Version = defaultVersion
	}

	buildInfo, ok := readBuild()
	if !ok || buildInfo == nil {
		return info
	}

	info.GoVersion = buildInfo.GoVersion
	if info.Version == defaultVersion && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		info.Version = buildInfo.Main.Version
	}
	for _, setting := range buildInfo.Settings {
		value := strings.TrimSpace(setting.Value)
		if value == "" {
			continue
		}
		switch setting.Key {
		case "vcs.revision":
			info.Commit = value
		case "vcs.time":
			info.CommitTime = value
		case "vcs.modified":
			info.Dirty = strings.EqualFold(value, "true")
		}
	}
	return info
}
