package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/nerrad567/govee-web/internal/infrastructure/config"
)

func TestNew_InvalidURI(t *testing.T) {
	_, err := New(config.RedisConfig{URI: "http://not-redis"})
	if !errors.Is(err, ErrInvalidURI) {
		t.Fatalf("New() error = %v, want ErrInvalidURI", err)
	}
}

func TestBuildOptions_AppliesTimeouts(t *testing.T) {
	opts, err := buildOptions(config.RedisConfig{
		URI:                 "redis://:secret@cache.local:6380/2",
		DialTimeoutSeconds:  4,
		ReadTimeoutSeconds:  2,
		WriteTimeoutSeconds: 1,
		PoolSize:            7,
	})
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}

	if opts.Addr != "cache.local:6380" {
		t.Errorf("Addr = %q, want cache.local:6380", opts.Addr)
	}
	if opts.DB != 2 {
		t.Errorf("DB = %d, want 2", opts.DB)
	}
	if opts.Password != "secret" {
		t.Errorf("Password not taken from URI")
	}
	if opts.DialTimeout != 4*time.Second || opts.ReadTimeout != 2*time.Second || opts.WriteTimeout != time.Second {
		t.Errorf("timeouts = %v/%v/%v", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}
	if opts.PoolSize != 7 {
		t.Errorf("PoolSize = %d, want 7", opts.PoolSize)
	}
}

func TestClient_CheckConnection(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(config.RedisConfig{URI: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	if err := client.CheckConnection(context.Background()); err != nil {
		t.Fatalf("CheckConnection() error = %v", err)
	}
	if client.Addr() != mr.Addr() {
		t.Errorf("Addr() = %q, want %q", client.Addr(), mr.Addr())
	}

	mr.Close()

	if err := client.CheckConnection(context.Background()); !errors.Is(err, ErrPingFailed) {
		t.Errorf("CheckConnection() after shutdown error = %v, want ErrPingFailed", err)
	}
}

func TestNew_DoesNotDial(t *testing.T) {
	// Nothing listens on this port; construction must still succeed.
	client, err := New(config.RedisConfig{URI: "redis://127.0.0.1:1", DialTimeoutSeconds: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}
