// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadGatewayConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  credential: "plain-secret"
`)
	cfg, err := LoadGatewayConfig(path)
	if err != nil {
		t.Fatalf("LoadGatewayConfig: %v", err)
	}
	if cfg.Gateway.Listen != "0.0.0.0:6666" {
		t.Errorf("expected default listen, got %q", cfg.Gateway.Listen)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults not applied: %+v", cfg.Logging)
	}
}

func TestLoadGatewayConfig_RequiresCredential(t *testing.T) {
	path := writeConfig(t, `
gateway:
  listen: "0.0.0.0:7777"
`)
	if _, err := LoadGatewayConfig(path); err == nil {
		t.Error("expected error without credential")
	}
}

func TestLoadGatewayConfig_CertAndKeyTogether(t *testing.T) {
	path := writeConfig(t, `
auth:
  credential: "x"
tls:
  cert: "/etc/gateway.pem"
`)
	if _, err := LoadGatewayConfig(path); err == nil {
		t.Error("expected error with cert but no key")
	}
}

func TestLoadClientConfig(t *testing.T) {
	path := writeConfig(t, `
gateway:
  host: "gw.example.com"
destination: "mc.example.com:25565"
auth_key: "secret"
tls:
  insecure_skip_verify: true
`)
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.Gateway.Port != 6666 {
		t.Errorf("expected default port 6666, got %d", cfg.Gateway.Port)
	}
	if cfg.Gateway.Address() != "gw.example.com:6666" {
		t.Errorf("unexpected address %q", cfg.Gateway.Address())
	}
	if !cfg.TLS.InsecureSkipVerify {
		t.Error("insecure_skip_verify not parsed")
	}
}

func TestLoadClientConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing host", "destination: \"a:1\"\nauth_key: \"k\"\n"},
		{"missing destination", "gateway:\n  host: \"gw\"\nauth_key: \"k\"\n"},
		{"bad destination", "gateway:\n  host: \"gw\"\ndestination: \"no-port\"\nauth_key: \"k\"\n"},
		{"missing auth", "gateway:\n  host: \"gw\"\ndestination: \"a:1\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadClientConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
