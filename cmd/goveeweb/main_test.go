package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

// setRequiredEnv sets the two mandatory settings and clears the rest.
func setRequiredEnv(t *testing.T, redisURI string) {
	t.Helper()
	t.Setenv("GOVEE_API_KEY", "test-key")
	t.Setenv("GOVEE_REDIS_URI", redisURI)
	t.Setenv("GOVEE_CONFIG", "")
	t.Setenv("GOVEE_PORT", "")
}

func TestRunCLI_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := runCLI(context.Background(), []string{"version"}, &stdout, &stderr)

	if code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	if !strings.HasPrefix(stdout.String(), "goveeweb dev (commit unknown") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunCLI_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"serve"}, exitUsage},
		{"help", []string{"help"}, exitOK},
		{"bad flag", []string{"check", "--nope"}, exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := runCLI(context.Background(), tt.args, &stdout, &stderr); code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.want, stderr.String())
			}
		})
	}
}

func TestRunCLI_Check(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t, "redis://:hunter2@cache.local:6379/0")

	var stdout, stderr bytes.Buffer
	code := runCLI(context.Background(), []string{"check"}, &stdout, &stderr)

	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "Settings OK\n") {
		t.Errorf("output should start with Settings OK, got %q", out)
	}
	for _, secret := range []string{"test-key", "hunter2"} {
		if strings.Contains(out, secret) {
			t.Errorf("output leaks %q:\n%s", secret, out)
		}
	}
	if !strings.Contains(out, "redis_ttl_seconds: 300") {
		t.Errorf("output missing default ttl:\n%s", out)
	}
}

func TestRunCLI_CheckFailures(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("missing api key", func(t *testing.T) {
		setRequiredEnv(t, "redis://localhost:6379")
		t.Setenv("GOVEE_API_KEY", "")

		var stdout, stderr bytes.Buffer
		if code := runCLI(context.Background(), []string{"check"}, &stdout, &stderr); code != exitError {
			t.Errorf("exit code = %d, want %d", code, exitError)
		}
		if !strings.Contains(stderr.String(), "api_key") {
			t.Errorf("stderr = %q, want mention of api_key", stderr.String())
		}
	})

	t.Run("explicit config file missing", func(t *testing.T) {
		setRequiredEnv(t, "redis://localhost:6379")

		var stdout, stderr bytes.Buffer
		code := runCLI(context.Background(), []string{"check", "--config", "/nonexistent/config.yaml"}, &stdout, &stderr)
		if code != exitError {
			t.Errorf("exit code = %d, want %d", code, exitError)
		}
	})
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("GOVEE_CONFIG", "/env.yaml")
		got, err := resolveConfigPath("/flag.yaml")
		if err != nil || got != "/flag.yaml" {
			t.Errorf("resolveConfigPath() = %q, %v", got, err)
		}
	})

	t.Run("env next", func(t *testing.T) {
		t.Setenv("GOVEE_CONFIG", "/env.yaml")
		got, err := resolveConfigPath("")
		if err != nil || got != "/env.yaml" {
			t.Errorf("resolveConfigPath() = %q, %v", got, err)
		}
	})

	t.Run("missing default means env only", func(t *testing.T) {
		t.Setenv("GOVEE_CONFIG", "")
		got, err := resolveConfigPath("")
		if err != nil || got != "" {
			t.Errorf("resolveConfigPath() = %q, %v", got, err)
		}
	})

	t.Run("default when present", func(t *testing.T) {
		t.Setenv("GOVEE_CONFIG", "")
		if err := os.MkdirAll(filepath.Join(dir, "configs"), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, defaultConfigPath), []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := resolveConfigPath("")
		if err != nil || got != defaultConfigPath {
			t.Errorf("resolveConfigPath() = %q, %v", got, err)
		}
	})
}

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRunCLI_ServerShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	mr := miniredis.RunT(t)
	setRequiredEnv(t, "redis://"+mr.Addr()+"/0")

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := "monitor:\n  schedule: \"\"\nlogging:\n  level: error\napi:\n  port: " + strconv.Itoa(freePort(t)) + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	var stdout, stderr bytes.Buffer
	go func() {
		done <- runCLI(ctx, []string{"server", "--config", cfgPath}, &stdout, &stderr)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code != exitOK {
			t.Errorf("exit code = %d, stderr = %q", code, stderr.String())
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
