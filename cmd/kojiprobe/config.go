// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/luxfi/koji"
)

// EnvPassword overrides the password from the config file.
const EnvPassword = "KOJIPROBE_PASSWORD"

const defaultHubURL = "https://koji.fedoraproject.org/kojihub"

type fileConfig struct {
	HubURL             string `toml:"hub_url"`
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	Timeout            string `toml:"timeout"`
	UserAgent          string `toml:"user_agent"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	Debug              bool   `toml:"debug"`
}

type probeConfig struct {
	HubURL             string
	Username           string
	Password           string
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
	Debug              bool
}

func defaultProbeConfig() probeConfig {
	return probeConfig{
		HubURL:    defaultHubURL,
		Timeout:   30 * time.Second,
		UserAgent: koji.DefaultUserAgent,
	}
}

func loadProbeConfig(path string) (probeConfig, error) {
	cfg := defaultProbeConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return probeConfig{}, fmt.Errorf("load probe config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return probeConfig{}, fmt.Errorf("load probe config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("hub_url") {
		cfg.HubURL = strings.TrimSpace(raw.HubURL)
	}
	if meta.IsDefined("username") {
		cfg.Username = strings.TrimSpace(raw.Username)
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return probeConfig{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("user_agent") {
		cfg.UserAgent = strings.TrimSpace(raw.UserAgent)
	}
	if meta.IsDefined("insecure_skip_verify") {
		cfg.InsecureSkipVerify = raw.InsecureSkipVerify
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *probeConfig) {
	if pw, ok := os.LookupEnv(EnvPassword); ok {
		cfg.Password = pw
	}
}
