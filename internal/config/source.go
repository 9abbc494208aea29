package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// source is the merged key space. Keys are flat and case-insensitive, so
// ESPN_TIMEOUT in the environment overrides espn_timeout in the file.
type source struct {
	k *koanf.Koanf
}

func newSource(path string) (source, error) {
	k := koanf.New(".")

	if path = strings.TrimSpace(path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return source{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return source{}, fmt.Errorf("load env config: %w", err)
	}

	return source{k: k}, nil
}

func (s source) get(key, fallback string) string {
	value := s.k.String(strings.ToLower(key))
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
