package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/openquest/questlog/config"
)

func TestBuildServicesRequiresDependencies(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  ServicesConfig
	}{
		{
			name: "missing config",
			cfg:  ServicesConfig{Logger: logger},
		},
		{
			name: "missing database",
			cfg: ServicesConfig{
				Config: &config.AppConfig{},
				Logger: logger,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildServices(context.Background(), tt.cfg); err == nil {
				t.Fatal("BuildServices() error = nil, want error")
			}
		})
	}
}

func TestBuildMetricsClientDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var cfg config.ObservabilityConfig
	cfg.Sanitize()

	client, err := BuildMetricsClient(cfg, logger)
	if err != nil {
		t.Fatalf("BuildMetricsClient() error = %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected metrics client to stay disabled by default")
	}
}

func TestCreateEncryptor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("hex key round trips", func(t *testing.T) {
		key := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
		enc := CreateEncryptor(key, logger)

		ct, err := enc.Encrypt([]byte("adventurer bio"))
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if ct == "adventurer bio" {
			t.Fatal("expected ciphertext to differ from plaintext")
		}

		pt, err := enc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if string(pt) != "adventurer bio" {
			t.Fatalf("Decrypt() = %q, want original", pt)
		}
	})

	t.Run("non-hex key is hashed", func(t *testing.T) {
		enc := CreateEncryptor("passphrase", logger)

		ct, err := enc.Encrypt([]byte("secret"))
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		pt, err := enc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if string(pt) != "secret" {
			t.Fatalf("Decrypt() = %q, want original", pt)
		}
	})

	t.Run("empty key uses noop", func(t *testing.T) {
		enc := CreateEncryptor("", logger)
		ct, err := enc.Encrypt([]byte("hello"))
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		pt, err := enc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if string(pt) != "hello" {
			t.Fatalf("Decrypt() = %q, want original", pt)
		}
	})
}
