package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCapture(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	dir := t.TempDir()

	outFile, err := os.Create(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatal(err)
	}
	defer outFile.Close()
	errFile, err := os.Create(filepath.Join(dir, "stderr"))
	if err != nil {
		t.Fatal(err)
	}
	defer errFile.Close()

	code = run(args, outFile, errFile)

	outBytes, err := os.ReadFile(outFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	errBytes, err := os.ReadFile(errFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	return code, string(outBytes), string(errBytes)
}

func TestRunMissingScenario(t *testing.T) {
	code, _, stderr := runCapture(t)
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "missing required scenario") {
		t.Errorf("stderr %q does not explain the missing argument", stderr)
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Errorf("stderr %q does not include usage", stderr)
	}
}

func TestRunUnknownScenario(t *testing.T) {
	code, _, stderr := runCapture(t, "no-such-scenario")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "unknown scenario") {
		t.Errorf("stderr %q does not name the bad scenario", stderr)
	}
}

func TestRunInvalidFailRate(t *testing.T) {
	code, _, stderr := runCapture(t, "low-risk", "-fail-rate", "1.5")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "failure rate") {
		t.Errorf("stderr %q does not mention the rate validation", stderr)
	}
}

func TestRunLowRisk(t *testing.T) {
	code, stdout, stderr := runCapture(t, "low-risk", "-seed", "1")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr: %s", code, stderr)
	}
	for _, want := range []string{
		"scenario: low-risk (failure rate 0%, seed 1)",
		"status:  APPROVED",
		"payment: charged 30.00",
		"subject: Order Confirmed:",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q\ngot:\n%s", want, stdout)
		}
	}
}

func TestRunFraudTest(t *testing.T) {
	code, stdout, stderr := runCapture(t, "fraud-test")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr: %s", code, stderr)
	}
	for _, want := range []string{
		"status:  REJECTED_RISK",
		"subject: Order Review Required:",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q\ngot:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "payment:") {
		t.Errorf("stdout reports a payment for a risk-rejected order:\n%s", stdout)
	}
}

func TestSeededFlagDetection(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"low-risk"}, false},
		{[]string{"low-risk", "-seed", "0"}, true},
		{[]string{"low-risk", "-seed=42"}, true},
		{[]string{"low-risk", "--seed", "7"}, true},
		{[]string{"low-risk", "--seed=7"}, true},
		{[]string{"low-risk", "-fail-rate", "0.5"}, false},
	}
	for _, tt := range tests {
		if got := seeded(tt.args); got != tt.want {
			t.Errorf("seeded(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
