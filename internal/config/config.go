/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
// The API bearer token is never stored on disk; it lives in the OS keychain.

type BackendConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type EditorConfig struct {
	// CanvasWidth/CanvasHeight are the design-surface dimensions in pixels.
	CanvasWidth  int `yaml:"canvas_width"`
	CanvasHeight int `yaml:"canvas_height"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Editor        EditorConfig  `yaml:"editor"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Editor:        EditorConfig{CanvasWidth: 500, CanvasHeight: 800},
		Logging:       LoggingConfig{Level: "info", Format: "console", File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "IVS_BACKEND_URL"
	EnvBackendTimeoutMs = "IVS_BACKEND_TIMEOUT_MS"
	EnvTelemetryOptIn   = "IVS_TELEMETRY_OPT_IN"
	EnvLogLevel         = "IVS_LOG_LEVEL"
	EnvLogFormat        = "IVS_LOG_FORMAT"
	EnvLogFile          = "IVS_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "InviteStudio"
	keyringToken   = "api_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "InviteStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "InviteStudio")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "invitestudio")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The API token is returned separately from keyring.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, "", err
	}
	if data, rerr := os.ReadFile(path); rerr == nil {
		var fileCfg AppConfig
		if uerr := yaml.Unmarshal(data, &fileCfg); uerr == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return tokenStore.Set(keyringService, keyringToken, token)
	}
	return nil
}

// ClearToken removes the stored API token from the keyring.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	if src.Editor.CanvasWidth > 0 {
		dst.Editor.CanvasWidth = src.Editor.CanvasWidth
	}
	if src.Editor.CanvasHeight > 0 {
		dst.Editor.CanvasHeight = src.Editor.CanvasHeight
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		lv := strings.ToLower(v)
		cfg.General.TelemetryOptIn = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}
