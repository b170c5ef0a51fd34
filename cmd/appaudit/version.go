package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at release time via -ldflags; empty in plain `go build` binaries,
// which fall back to the module's embedded build info.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion reports the release version, the module version recorded by
// the toolchain, or "(devel)" for builds outside a module download.
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit reports the release commit, shortened to seven characters when
// taken from the vcs metadata.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// getDate reports the release build date.
func getDate() string {
	if date != "" {
		return date
	}
	if ts := buildSetting("vcs.time"); ts != "" {
		return ts
	}
	return "unknown"
}

// buildSetting looks up a single key in the binary's embedded build
// settings. It returns "" when the key is absent or no build info was
// embedded.
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of appaudit.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "appaudit version %s\n", getVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
		},
	}
}
