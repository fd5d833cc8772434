package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/wallshadow/internal/config"
	"github.com/Faultbox/wallshadow/internal/geocode"
	"github.com/Faultbox/wallshadow/pkg/shadow"
)

func TestReportExitCodes(t *testing.T) {
	_, degenerate := shadow.Compute(shadow.Input{ElevationDeg: 10, AzimuthDeg: 180, SlopeDeg: 40, WallHeightM: 2})
	_, below := shadow.Compute(shadow.Input{ElevationDeg: -1, WallHeightM: 2})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, 0},
		{"degenerate is a warning", degenerate, 0},
		{"sun below horizon", below, 2},
		{"place not found", fmt.Errorf("lookup: %w", geocode.ErrNotFound), 1},
		{"other", errors.New("network down"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := report("summary", tt.err); got != tt.want {
				t.Errorf("report() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallshadow.yaml")
	if code := cmdInitConfig([]string{path}); code != 0 {
		t.Fatalf("cmdInitConfig = %d", code)
	}
}

// captureOutput redirects command output into buffers for the test's lifetime.
func captureOutput(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	origOut, origErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = origOut, origErr })
	return out, errOut
}

func TestAnglesDegenerateWarns(t *testing.T) {
	out, _ := captureOutput(t)

	args := []string{"-elevation", "10", "-azimuth", "180", "-slope", "40", "-aspect", "0", "-height", "2"}
	if code := cmdAngles(context.Background(), config.Default(), args); code != 0 {
		t.Fatalf("cmdAngles = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Warning: "+shadow.DegenerateShadow.Message()) {
		t.Errorf("output should carry the degenerate warning:\n%s", out.String())
	}
}

func TestAnglesValidShadowHasNoWarning(t *testing.T) {
	out, _ := captureOutput(t)

	args := []string{"-elevation", "45", "-azimuth", "180", "-slope", "0", "-height", "2.5"}
	if code := cmdAngles(context.Background(), config.Default(), args); code != 0 {
		t.Fatalf("cmdAngles = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Horizontal shadow length: 2.50 m") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Warning") {
		t.Errorf("valid shadow printed a warning:\n%s", out.String())
	}
}

func TestAnglesRequiresSunAngles(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		missing string
	}{
		{"no elevation", []string{"-azimuth", "90"}, "-elevation"},
		{"no azimuth", []string{"-elevation", "30"}, "-azimuth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := captureOutput(t)
			if code := cmdAngles(context.Background(), config.Default(), tt.args); code != 1 {
				t.Errorf("cmdAngles = %d, want 1", code)
			}
			if !strings.Contains(errOut.String(), tt.missing+" is required") {
				t.Errorf("stderr = %q, want mention of %s", errOut.String(), tt.missing)
			}
			if out.Len() != 0 {
				t.Errorf("no shadow should be printed, got %q", out.String())
			}
		})
	}
}
