// Package config loads areaflow settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. AREAFLOW_REDIS_ADDR.
const EnvPrefix = "AREAFLOW_"

type Config struct {
	Listen      string `mapstructure:"listen"`
	DatabaseURL string `mapstructure:"database_url"`
	Redis       Redis  `mapstructure:"redis"`
	LogLevel    string `mapstructure:"log_level"`
	APIBaseURL  string `mapstructure:"api_url"`
}

// Redis configures the draft store. An empty Addr disables it.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

func defaults() map[string]any {
	return map[string]any{
		"listen":    ":3000",
		"log_level": "info",
		"api_url":   "http://localhost:3000",
		"redis": map[string]any{
			"db":     0,
			"ttl":    "168h",
			"prefix": "area:draft:",
		},
	}
}

// Load reads path (optional; a missing file yields the defaults), applies
// AREAFLOW_* overrides and decodes the result. Files ending in .toml are
// read as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	raw := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			file, err := parse(path, data)
			if err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			merge(raw, file)
		}
	}

	// DATABASE_URL is accepted as well; AREAFLOW_DATABASE_URL wins.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		raw["database_url"] = v
	}
	applyEnv(raw, os.Environ())

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

func parse(path string, data []byte) (map[string]any, error) {
	var file map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		return file, nil
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file, nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if cur, isMap := dst[k].(map[string]any); ok && isMap {
			merge(cur, sub)
			continue
		}
		dst[k] = v
	}
}

// applyEnv maps AREAFLOW_REDIS_ADDR to raw["redis"]["addr"]. The first
// segment after the prefix picks a nested section when one exists.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key == "" {
			continue
		}
		section, rest, nested := strings.Cut(key, "_")
		if sub, isMap := raw[section].(map[string]any); nested && isMap {
			sub[rest] = value
			continue
		}
		raw[key] = value
	}
}
