package appctx

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultFrontendDist = "dist"
	DefaultVersion      = "0.0.0"
	DefaultWindowLabel  = "main"
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600

	// CorePlugin prefixes permissions owned by the shell itself.
	CorePlugin = "core"
	// AllWindows in a capability's window list matches every window.
	AllWindows = "*"
)

type Config struct {
	ProductName string       `toml:"productName"`
	Version     string       `toml:"version"`
	Identifier  string       `toml:"identifier"`
	Build       BuildConfig  `toml:"build"`
	App         AppConfig    `toml:"app"`
	Bundle      BundleConfig `toml:"bundle"`
}

type BuildConfig struct {
	FrontendDist string `toml:"frontendDist"`
}

type AppConfig struct {
	Windows  []WindowConfig `toml:"windows"`
	Security SecurityConfig `toml:"security"`
}

type SecurityConfig struct {
	Capabilities []Capability `toml:"capabilities"`
}

type BundleConfig struct {
	// Icon is relative to the bundle root, not the frontend dist.
	Icon string `toml:"icon"`
}

type WindowConfig struct {
	Label      string `toml:"label"`
	Title      string `toml:"title"`
	URL        string `toml:"url"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	MinWidth   int    `toml:"minWidth"`
	MinHeight  int    `toml:"minHeight"`
	Resizable  *bool  `toml:"resizable"`
	Fullscreen bool   `toml:"fullscreen"`
	Center     bool   `toml:"center"`
	Visible    *bool  `toml:"visible"`
}

func (w WindowConfig) IsResizable() bool { return w.Resizable == nil || *w.Resizable }
func (w WindowConfig) IsVisible() bool   { return w.Visible == nil || *w.Visible }

type Capability struct {
	Identifier  string   `toml:"identifier"`
	Description string   `toml:"description"`
	Windows     []string `toml:"windows"`
	Permissions []string `toml:"permissions"`
}

func (c Capability) appliesTo(label string) bool {
	for _, w := range c.Windows {
		if w == AllWindows || w == label {
			return true
		}
	}
	return false
}

// PluginOf returns the plugin prefix of a permission identifier such as
// "log:default".
func PluginOf(permission string) string {
	plugin, _, _ := strings.Cut(permission, ":")
	return plugin
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Build.FrontendDist == "" {
		c.Build.FrontendDist = DefaultFrontendDist
	}

	for i := range c.App.Windows {
		w := &c.App.Windows[i]
		if w.Label == "" && i == 0 {
			w.Label = DefaultWindowLabel
		}
		if w.Title == "" {
			w.Title = c.ProductName
		}
		if w.Width <= 0 {
			w.Width = DefaultWindowWidth
		}
		if w.Height <= 0 {
			w.Height = DefaultWindowHeight
		}
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ProductName) == "" {
		errs = append(errs, errors.New("productName is required"))
	}
	if err := validateIdentifier(c.Identifier); err != nil {
		errs = append(errs, err)
	}

	labels := make(map[string]bool, len(c.App.Windows))
	for i, w := range c.App.Windows {
		switch {
		case w.Label == "":
			errs = append(errs, fmt.Errorf("window %d: label is required", i))
		case w.Label == AllWindows:
			errs = append(errs, fmt.Errorf("window %d: label %q is reserved", i, w.Label))
		case labels[w.Label]:
			errs = append(errs, fmt.Errorf("window %d: duplicate label %q", i, w.Label))
		}
		labels[w.Label] = true

		if w.MinWidth > w.Width || w.MinHeight > w.Height {
			errs = append(errs, fmt.Errorf("window %q: size %dx%d is below its minimum %dx%d",
				w.Label, w.Width, w.Height, w.MinWidth, w.MinHeight))
		}
	}

	capIDs := make(map[string]bool, len(c.App.Security.Capabilities))
	for i, capability := range c.App.Security.Capabilities {
		if capability.Identifier == "" {
			errs = append(errs, fmt.Errorf("capability %d: identifier is required", i))
		} else if capIDs[capability.Identifier] {
			errs = append(errs, fmt.Errorf("capability %d: duplicate identifier %q", i, capability.Identifier))
		}
		capIDs[capability.Identifier] = true

		for _, label := range capability.Windows {
			if label != AllWindows && !labels[label] {
				errs = append(errs, fmt.Errorf("capability %q: unknown window %q", capability.Identifier, label))
			}
		}
		for _, perm := range capability.Permissions {
			plugin, name, ok := strings.Cut(perm, ":")
			if !ok || plugin == "" || name == "" {
				errs = append(errs, fmt.Errorf("capability %q: malformed permission %q", capability.Identifier, perm))
			}
		}
	}

	return errors.Join(errs...)
}

func validateIdentifier(id string) error {
	if id == "" {
		return errors.New("identifier is required")
	}
	if !strings.Contains(id, ".") || strings.HasPrefix(id, ".") || strings.HasSuffix(id, ".") {
		return fmt.Errorf("identifier %q must be in reverse domain notation", id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return fmt.Errorf("identifier %q contains invalid character %q", id, r)
		}
	}
	return nil
}
