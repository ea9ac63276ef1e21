package config

import (
	"strings"
	"testing"
)

func TestNewConfigFile(t *testing.T) {
	for _, cfg := range []*Config{
		nil,
		DefaultConfig(),
		&Config{},
	} {
		if s := newConfigFile(cfg); s == "" {
			t.Errorf("newConfigFile(nil) => %q, want non-empty string", s)
		}
	}
}

func TestNewConfigFileSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Identity.ClientSecret = "hunter2"
	cfg.Storage.SecretAccessKey = "hunter3"
	s := newConfigFile(cfg)
	if strings.Contains(s, "hunter2") || strings.Contains(s, "hunter3") {
		t.Errorf("newConfigFile(cfg) contains a secret")
	}
}
