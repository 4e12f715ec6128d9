package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/strategyclub/debate/internal/config"
	"github.com/strategyclub/debate/internal/event"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	if rootCmd.Use != "debate" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "debate")
	}

	// Check for expected subcommands (compare by Name(), not Use which includes args)
	expectedCmds := []string{"run", "synthesize", "status", "serve"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestRunRequiresInputFile(t *testing.T) {
	if _, err := executeCommand(rootCmd, "run", filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestRunRejectsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand(rootCmd, "run", path); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestStageNotesTruncation(t *testing.T) {
	long := "- [CHANGED] a\n- [CHANGED] b\n- [CHANGED] c\n- [CHANGED] d\n- [CHANGED] e\n- [CHANGED] f\n- [CHANGED] g"
	got := stageNotes(event.NewStageCompletedEvent("run1", 2, "critique", "claude", long))

	if !strings.Contains(got, "[round 2] critique (claude):") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "- [CHANGED] e") || strings.Contains(got, "- [CHANGED] f") {
		t.Errorf("want exactly five critique lines: %q", got)
	}
	if !strings.Contains(got, "... (2 more)") {
		t.Errorf("missing truncation tail: %q", got)
	}

	short := stageNotes(event.NewStageCompletedEvent("run1", 1, "synthesis", "chatgpt", "- [CHANGED] only"))
	if strings.Contains(short, "more)") {
		t.Errorf("short critique should not be truncated: %q", short)
	}
}

func TestResolveOutputDirDefaults(t *testing.T) {
	cfg := config.Default()

	dir, err := resolveOutputDir(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	cwd, _ := os.Getwd()
	if want := filepath.Join(cwd, "debate_output"); dir != want {
		t.Errorf("default dir = %q, want %q", dir, want)
	}

	dir, err = resolveOutputDir(cfg, "custom")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) || filepath.Base(dir) != "custom" {
		t.Errorf("flag dir = %q, want absolute path ending in custom", dir)
	}
}
