// Package appctx turns the build-time bundle (app.toml plus frontend assets)
// into the runtime context handed to the shell's run loop.
package appctx

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name of the configuration file at the bundle root.
const ConfigFile = "app.toml"

var ErrNoConfig = errors.New("bundle has no " + ConfigFile)

type Context struct {
	Config Config
	// Assets is rooted at Config.Build.FrontendDist.
	Assets fs.FS

	bundle fs.FS
}

// Generate reads and validates the bundle. Unknown configuration keys are
// rejected so a typo does not silently fall back to a default.
func Generate(bundle fs.FS) (*Context, error) {
	raw, err := fs.ReadFile(bundle, ConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("read %s: %w", ConfigFile, err)
	}

	var cfg Config
	md, err := toml.Decode(string(raw), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse %s: unknown keys: %s", ConfigFile, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	dist := path.Clean(cfg.Build.FrontendDist)
	info, err := fs.Stat(bundle, dist)
	if err != nil {
		return nil, fmt.Errorf("frontend dist %q: %w", dist, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frontend dist %q is not a directory", dist)
	}
	assets, err := fs.Sub(bundle, dist)
	if err != nil {
		return nil, fmt.Errorf("frontend dist %q: %w", dist, err)
	}

	if cfg.Bundle.Icon != "" {
		if _, err := fs.Stat(bundle, cfg.Bundle.Icon); err != nil {
			return nil, fmt.Errorf("bundle icon %q: %w", cfg.Bundle.Icon, err)
		}
	}

	return &Context{Config: cfg, Assets: assets, bundle: bundle}, nil
}

// Asset reads a frontend asset. Leading slashes are ignored so window URLs
// may be written either way.
func (c *Context) Asset(name string) ([]byte, error) {
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	if name == "" {
		return nil, fmt.Errorf("asset: empty path")
	}
	return fs.ReadFile(c.Assets, name)
}

// Icon returns the bundle icon name and bytes, or ok=false when none is configured.
func (c *Context) Icon() (name string, data []byte, ok bool, err error) {
	if c.Config.Bundle.Icon == "" {
		return "", nil, false, nil
	}
	data, err = fs.ReadFile(c.bundle, c.Config.Bundle.Icon)
	if err != nil {
		return "", nil, false, err
	}
	return path.Base(c.Config.Bundle.Icon), data, true, nil
}

func (c *Context) Window(label string) (WindowConfig, bool) {
	for _, w := range c.Config.App.Windows {
		if w.Label == label {
			return w, true
		}
	}
	return WindowConfig{}, false
}

// Allowed reports whether any capability grants permission to the window.
func (c *Context) Allowed(label, permission string) bool {
	for _, capability := range c.Config.App.Security.Capabilities {
		if !capability.appliesTo(label) {
			continue
		}
		for _, p := range capability.Permissions {
			if p == permission {
				return true
			}
		}
	}
	return false
}

// PermissionPlugins lists the distinct plugin prefixes referenced by
// capabilities, in first-seen order.
func (c *Context) PermissionPlugins() []string {
	seen := make(map[string]bool)
	var out []string
	for _, capability := range c.Config.App.Security.Capabilities {
		for _, p := range capability.Permissions {
			plugin := PluginOf(p)
			if !seen[plugin] {
				seen[plugin] = true
				out = append(out, plugin)
			}
		}
	}
	return out
}
