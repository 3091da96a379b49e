package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a.yaml", []string{"a.yaml"}},
		{"a.yaml, tours/ ,", []string{"a.yaml", "tours/"}},
	}
	for _, tt := range tests {
		if got := splitPaths(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitPaths(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestCheckBuiltinTours(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := runCheck(nil, &stdout, &stderr); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"client-welcome", "find-coach", "checklist client", "checklist coach", "OK:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to mention %q, got:\n%s", want, out)
		}
	}
}

func TestCheckInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("tours:\n  - id: empty\n    steps: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := runCheck([]string{path}, &stdout, &stderr); code != 1 {
		t.Errorf("Expected exit 1 for a tour without steps, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Errorf("Expected an error message, got %q", stderr.String())
	}
}

func TestInitWritesBuiltinTours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tours.yaml")
	var stdout, stderr bytes.Buffer
	if code := runInit([]string{path}, &stdout, &stderr); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	if code := runCheck([]string{path}, &stdout, &stderr); code != 0 {
		t.Errorf("Expected written tours to pass check, got %d: %s", code, stderr.String())
	}

	stderr.Reset()
	if code := runInit([]string{path}, &stdout, &stderr); code != 1 {
		t.Errorf("Expected exit 1 when the file exists, got %d", code)
	}
	if code := runInit([]string{"-force", path}, &stdout, &stderr); code != 0 {
		t.Errorf("Expected -force to overwrite, got %d: %s", code, stderr.String())
	}
}

func TestSnapshotWritesSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step.svg")
	var stdout, stderr bytes.Buffer
	code := runSnapshot([]string{"-tour", "client-welcome", "-step", "2", "-o", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected snapshot file: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("Expected SVG output")
	}
}

func TestSnapshotErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing tour flag", nil, 2},
		{"unknown tour", []string{"-tour", "nope"}, 1},
		{"step out of range", []string{"-tour", "client-welcome", "-step", "40"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := runSnapshot(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("Expected exit %d, got %d: %s", tt.code, code, stderr.String())
			}
		})
	}
}

func TestAuditRequiresURLAndTour(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := runAudit([]string{"-tour", "client-welcome"}, &stdout, &stderr); code != 2 {
		t.Errorf("Expected exit 2 without -url, got %d", code)
	}
	if code := runAudit([]string{"-url", "http://localhost", "-tour", "nope"}, &stdout, &stderr); code != 1 {
		t.Errorf("Expected exit 1 for unknown tour, got %d", code)
	}
	if !strings.Contains(stderr.String(), "known:") {
		t.Errorf("Expected known tour ids in the error, got %q", stderr.String())
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"check", "snapshot", "audit", "init"} {
		if _, ok := subcommands[name]; !ok {
			t.Errorf("Expected subcommand %q", name)
		}
	}
}

func TestRunExitCodes(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{"version", []string{"-version"}, 0, "spotlight ", ""},
		{"help", []string{"-help"}, 0, "Commands:", ""},
		{"unknown flag", []string{"-nope"}, 2, "", "flag provided but not defined"},
		{"unknown role", []string{"-role", "admin"}, 2, "", "unknown role"},
		{"missing tours", []string{"-tours", filepath.Join(t.TempDir(), "none.yaml")}, 1, "", "Error loading tours"},
		{"not a terminal", []string{"-role", "client"}, 1, "", "needs a terminal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("Expected exit %d, got %d: %s", tt.code, code, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.stdout) {
				t.Errorf("Expected stdout to contain %q, got %q", tt.stdout, stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.stderr) {
				t.Errorf("Expected stderr to contain %q, got %q", tt.stderr, stderr.String())
			}
		})
	}
}
