package core

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	manifest "github.com/joeydtaylor/terakoya-core/pkg/manifest"
)

// LoadConfig reads and validates a TOML route manifest.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (manifest.Config, error) {
	var cfg manifest.Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, fmt.Errorf("manifest decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}

// CheckHandlers reports every inproc route whose handler is not registered.
func CheckHandlers(cfg manifest.Config) error {
	for _, rt := range cfg.Routes {
		if rt.Handler.Type != manifest.HandlerInproc {
			continue
		}
		if _, ok := Lookup(rt.Handler.Name); !ok {
			return fmt.Errorf("%s %s: handler %q not registered", rt.Method, rt.Path, rt.Handler.Name)
		}
	}
	return nil
}
