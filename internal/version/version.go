// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version describes the running build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Info identifies a build. main fills it from values injected with
// -ldflags "-X main.appVersion=...".
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

// Resolve fills missing fields from the module build info, so that
// "go install" builds still report something useful.
func (i Info) Resolve() Info {
	if i.Version == "" || i.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			i.Version = bi.Main.Version
		}
	}
	if i.Version == "" {
		i.Version = "dev"
	}
	if i.GitCommit == "" || i.GitCommit == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					i.GitCommit = s.Value[:7]
				}
			}
		}
	}
	return i
}

func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" && i.GitCommit != "unknown" {
		s += " (" + i.GitCommit + ")"
	}
	if i.BuildTime != "" && i.BuildTime != "unknown" {
		s += fmt.Sprintf(" built %s", i.BuildTime)
	}
	return s
}
