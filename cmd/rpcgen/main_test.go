package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"go.eggybyte.com/egg/rpcgen/internal/testingx"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGenerate(t *testing.T) {
	input := testingx.WriteSchema(t, "order.proto", testingx.OrderSchema)
	out := t.TempDir()

	code, stdout, stderr := run(t, "generate", "-i", input, "-o", out, "--port", "8080")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "0 conflict(s)") {
		t.Errorf("summary missing from output:\n%s", stdout)
	}

	conf, err := os.ReadFile(filepath.Join(out, "order", "conf", "order.yaml"))
	if err != nil {
		t.Fatalf("read conf: %v", err)
	}
	if !strings.Contains(string(conf), "8080") {
		t.Errorf("port flag not applied to conf:\n%s", conf)
	}

	// A second run changes nothing.
	code, stdout, _ = run(t, "generate", "-i", input, "-o", out, "--port", "8080")
	if code != 0 {
		t.Fatalf("second run exit code = %d", code)
	}
	if !strings.Contains(stdout, "0 written") {
		t.Errorf("second run wrote files:\n%s", stdout)
	}
}

func TestGenerateConflict(t *testing.T) {
	input := testingx.WriteSchema(t, "order.proto", testingx.OrderSchema)
	out := t.TempDir()

	if code, _, stderr := run(t, "generate", "-i", input, "-o", out); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	readme := filepath.Join(out, "order", "README.md")
	if err := os.WriteFile(readme, []byte("edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := run(t, "generate", "-i", input, "-o", out)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "README.md") {
		t.Errorf("conflict path missing from stderr:\n%s", stderr)
	}
	data, _ := os.ReadFile(readme)
	if string(data) != "edited\n" {
		t.Errorf("conflicting file was overwritten: %q", data)
	}
}

func TestGenerateValidationFailure(t *testing.T) {
	input := testingx.WriteSchema(t, "order.proto", `syntax = "proto3";
package order;
message Order { Missing item = 1; }
service OrderService { rpc Get(Order) returns (Order); }
`)
	out := t.TempDir()

	code, _, stderr := run(t, "generate", "-i", input, "-o", out)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Missing") {
		t.Errorf("finding missing from stderr:\n%s", stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "order")); !os.IsNotExist(err) {
		t.Errorf("project directory created for invalid schema: %v", err)
	}
}

func TestGenerateInputErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing input flag", args: []string{"generate", "-o", "out"}},
		{name: "wrong extension", args: []string{"generate", "-i", "order.txt", "-o", "out"}},
		{name: "absent file", args: []string{"generate", "-i", "absent.proto", "-o", "out"}},
		{name: "bad workers", args: []string{"generate", "-i", "absent.proto", "-o", "out", "--workers", "0"}},
		{name: "unexpected argument", args: []string{"generate", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := run(t, tt.args...); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestPlanJSON(t *testing.T) {
	input := testingx.WriteSchema(t, "order.proto", testingx.OrderSchema)
	out := t.TempDir()

	code, stdout, stderr := run(t, "plan", "-i", input, "-o", out, "--format", "json")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var plan struct {
		Root  string `json:"root"`
		Files []struct {
			OutputPath string `json:"path"`
		} `json:"files"`
	}
	if err := json.Unmarshal([]byte(stdout), &plan); err != nil {
		t.Fatalf("plan output is not JSON: %v\n%s", err, stdout)
	}
	if plan.Root != "order" {
		t.Errorf("root = %q", plan.Root)
	}
	if len(plan.Files) == 0 {
		t.Error("plan lists no files")
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("plan wrote %d entries", len(entries))
	}
}

func TestPlanUnknownFormat(t *testing.T) {
	input := testingx.WriteSchema(t, "order.proto", testingx.OrderSchema)
	if code, _, _ := run(t, "plan", "-i", input, "-o", t.TempDir(), "--format", "xml"); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "version")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(stdout, "rpcgen version ") {
		t.Errorf("unexpected output: %q", stdout)
	}

	code, stdout, _ = run(t, "--json", "version")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if info["version"] == "" {
		t.Error("version field empty")
	}
}

func TestConfigFile(t *testing.T) {
	input := testingx.WriteSchema(t, "order.proto", testingx.OrderSchema)
	cfg := filepath.Join(t.TempDir(), "rpcgen.yaml")
	if err := os.WriteFile(cfg, []byte("module_prefix: github.com/acme\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	if code, _, stderr := run(t, "--config", cfg, "generate", "-i", input, "-o", out); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	gomod, err := os.ReadFile(filepath.Join(out, "order", "go.mod"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(gomod), "module github.com/acme/order") {
		t.Errorf("module prefix not applied:\n%s", gomod)
	}
}

func TestConfigCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "rpcgen.yaml")
	if err := os.WriteFile(cfg, []byte("workers: 8\nserver:\n  port: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := run(t, "--config", cfg, "config")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"workers: 8", "port: 9000", "go_version:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	// The printed options load back unchanged.
	again := filepath.Join(t.TempDir(), "rpcgen.yaml")
	if err := os.WriteFile(again, []byte(stdout), 0o644); err != nil {
		t.Fatal(err)
	}
	code, second, _ := run(t, "--config", again, "config")
	if code != 0 || second != stdout {
		t.Errorf("round trip changed the options (exit %d):\n%s", code, second)
	}

	bad := filepath.Join(t.TempDir(), "rpcgen.yaml")
	if err := os.WriteFile(bad, []byte("workers: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := run(t, "--config", bad, "config"); code != 1 {
		t.Errorf("exit code = %d for invalid options, want 1", code)
	}
}
