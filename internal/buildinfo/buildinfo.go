// Package buildinfo holds build-time metadata injected through -ldflags.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Info describes the running binary.
type Info struct {
	Version   string
	BuildDate string
	Commit    string
}

// New returns Info with empty fields replaced by UnknownValue. A missing
// commit is taken from the VCS stamp of the Go toolchain when present.
func New(version, buildDate, commit string) Info {
	if commit == "" {
		commit = vcsRevision()
	}
	return Info{
		Version:   orUnknown(version),
		BuildDate: orUnknown(buildDate),
		Commit:    orUnknown(commit),
	}
}

// String formats the metadata for `studio-landing version`.
func (i Info) String() string {
	return fmt.Sprintf("studio-landing %s (commit %s, built %s)", i.Version, shortCommit(i.Commit), i.BuildDate)
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
