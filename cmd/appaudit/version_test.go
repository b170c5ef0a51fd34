package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionFallbacks(t *testing.T) {
	t.Parallel()

	// In a test binary the ldflags variables are empty, so each getter
	// must resolve through build info or its fallback literal.
	if getVersion() == "" {
		t.Error("getVersion() returned empty string")
	}
	if getCommit() == "" {
		t.Error("getCommit() returned empty string")
	}
	if getDate() == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestBuildSetting(t *testing.T) {
	t.Parallel()

	if got := buildSetting("no.such.key"); got != "" {
		t.Errorf("buildSetting(no.such.key) = %q, want empty", got)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("command metadata", func(t *testing.T) {
		t.Parallel()

		cmd := NewVersionCmd()
		if cmd.Use != "version" {
			t.Errorf("expected Use to be 'version', got %q", cmd.Use)
		}
		if cmd.Short == "" {
			t.Error("expected Short to be non-empty")
		}
	})

	t.Run("prints version, commit, and build date", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"appaudit version", "commit:", "built:"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got %q", want, output)
			}
		}
	})
}
