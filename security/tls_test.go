package security

import (
	"crypto/tls"
	"strings"
	"testing"

	"github.com/kbukum/hostproc/security/tlstest"
)

func TestTLSConfig_BuildDisabled(t *testing.T) {
	cfg, err := TLSConfig{}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil tls.Config for zero settings")
	}
}

func TestTLSConfig_Build(t *testing.T) {
	certs := tlstest.Generate(t)

	tests := []struct {
		name  string
		cfg   TLSConfig
		check func(*testing.T, *tls.Config)
	}{
		{"skip verify", TLSConfig{SkipVerify: true}, func(t *testing.T, c *tls.Config) {
			if !c.InsecureSkipVerify || c.MinVersion != tls.VersionTLS12 {
				t.Errorf("unexpected config: skip=%v min=%x", c.InsecureSkipVerify, c.MinVersion)
			}
		}},
		{"server name", TLSConfig{ServerName: "collector.internal"}, func(t *testing.T, c *tls.Config) {
			if c.ServerName != "collector.internal" {
				t.Errorf("expected server name, got %q", c.ServerName)
			}
		}},
		{"tls 1.3", TLSConfig{MinVersion: "1.3"}, func(t *testing.T, c *tls.Config) {
			if c.MinVersion != tls.VersionTLS13 {
				t.Errorf("expected TLS 1.3, got %x", c.MinVersion)
			}
		}},
		{"custom CA", TLSConfig{CAFile: certs.CAFile}, func(t *testing.T, c *tls.Config) {
			if c.RootCAs == nil {
				t.Error("expected RootCAs")
			}
		}},
		{"mutual TLS", TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}, func(t *testing.T, c *tls.Config) {
			if len(c.Certificates) != 1 {
				t.Errorf("expected 1 client certificate, got %d", len(c.Certificates))
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := tc.cfg.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg == nil {
				t.Fatal("expected tls.Config")
			}
			tc.check(t, cfg)
		})
	}
}

func TestTLSConfig_BuildErrors(t *testing.T) {
	certs := tlstest.Generate(t)
	garbage := tlstest.WriteFile(t, "bad.pem", "-----BEGIN CERTIFICATE-----\nnot-base64\n-----END CERTIFICATE-----\n")

	tests := []struct {
		name    string
		cfg     TLSConfig
		wantErr string
	}{
		{"missing CA", TLSConfig{CAFile: "/nonexistent/ca.pem"}, "reading CA file"},
		{"garbage CA", TLSConfig{CAFile: garbage}, "no certificates"},
		{"cert without key", TLSConfig{CertFile: certs.CertFile}, "key_file"},
		{"key mismatch", TLSConfig{CertFile: certs.CertFile, KeyFile: certs.CAFile}, "loading client certificate"},
		{"bad version", TLSConfig{MinVersion: "1.0"}, "min_version"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	if (TLSConfig{}).IsEnabled() {
		t.Error("zero config must be disabled")
	}
	if !(TLSConfig{CAFile: "ca.pem"}).IsEnabled() {
		t.Error("CA file must enable TLS")
	}
}
