package main

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"humblerss/rssproxy/pkg/config"
)

func TestVersionCommand(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	GitCommit, BuildDate = "abc123", "2026-03-01"
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetOut(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"rssproxy " + config.Version,
		"Git Commit: abc123",
		"Build Date: 2026-03-01",
		"Go Version: " + runtime.Version(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandTree(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"run"}, "run"},
		{[]string{"version"}, "version"},
		{[]string{"journal", "tail"}, "tail"},
		{[]string{"journal", "prune"}, "prune"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := rootCmd.Find(tt.args)
			if err != nil {
				t.Fatalf("Find(%v) error = %v", tt.args, err)
			}
			if cmd.Name() != tt.want {
				t.Errorf("Find(%v) = %q, want %q", tt.args, cmd.Name(), tt.want)
			}
		})
	}

	for _, name := range []string{"port", "threads", "timeout"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("root command has no --%s flag", name)
		}
		if runCmd.Flags().Lookup(name) == nil {
			t.Errorf("run command has no --%s flag", name)
		}
	}
}
