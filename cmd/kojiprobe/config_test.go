// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/luxfi/koji"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadProbeConfigDefaults(t *testing.T) {
	cfg, err := loadProbeConfig(writeConfig(t, "# nothing set\n"))
	if err != nil {
		t.Fatalf("loadProbeConfig: %v", err)
	}
	if cfg != defaultProbeConfig() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
	if cfg.UserAgent != koji.DefaultUserAgent || cfg.Timeout != 30*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadProbeConfigOverrides(t *testing.T) {
	cfg, err := loadProbeConfig(writeConfig(t, `
hub_url = " https://koji.example.org/kojihub "
username = "builder"
password = "hunter2"
timeout = "45s"
user_agent = "kojiprobe/1.0"
insecure_skip_verify = true
debug = true
`))
	if err != nil {
		t.Fatalf("loadProbeConfig: %v", err)
	}
	want := probeConfig{
		HubURL:             "https://koji.example.org/kojihub",
		Username:           "builder",
		Password:           "hunter2",
		Timeout:            45 * time.Second,
		UserAgent:          "kojiprobe/1.0",
		InsecureSkipVerify: true,
		Debug:              true,
	}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadProbeConfigErrors(t *testing.T) {
	tests := map[string]string{
		"bad timeout": `timeout = "soon"`,
		"unknown key": `hub = "https://koji.example.org/kojihub"`,
		"bad syntax":  `hub_url = `,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadProbeConfig(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := loadProbeConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "load probe config") {
		t.Fatalf("missing file: got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultProbeConfig()
	cfg.Password = "from-file"

	t.Setenv(EnvPassword, "from-env")
	applyEnvOverrides(&cfg)
	if cfg.Password != "from-env" {
		t.Fatalf("password = %q", cfg.Password)
	}
}
