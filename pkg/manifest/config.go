package manifest

import (
	"errors"
	"fmt"
)

// Config is the top-level manifest: the HTTP route table.
type Config struct {
	Routes []Route `toml:"route"`
}

// Validate normalizes every route and rejects empty or duplicate tables.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return errors.New("manifest: at least one [[route]] is required")
	}
	if err := c.validateRoutes(); err != nil {
		return err
	}
	seen := make(map[string]int, len(c.Routes))
	for i, r := range c.Routes {
		k := r.Method + " " + r.Path
		if j, dup := seen[k]; dup {
			return fmt.Errorf("route %d duplicates route %d (%s)", i, j, k)
		}
		seen[k] = i
	}
	return nil
}
