package shell

import (
	"fmt"

	"appshell/internal/appctx"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

// DriverFunc creates the toolkit application for an app identifier.
type DriverFunc func(id string) fyne.App

// Builder accumulates plugins and hooks. It is consumed by Build or Run.
type Builder struct {
	plugins  []Plugin
	names    map[string]bool
	setup    []func(*App) error
	driver   DriverFunc
	err      error
	consumed bool
}

func Default() *Builder {
	return &Builder{
		names:  make(map[string]bool),
		driver: fyneapp.NewWithID,
	}
}

// Plugin registers p. Registration problems are reported by Build.
func (b *Builder) Plugin(p Plugin) *Builder {
	if b.err != nil {
		return b
	}

	switch {
	case b.consumed:
		b.err = ErrBuilderConsumed
	case p == nil:
		b.err = ErrNilPlugin
	case p.Name() == "":
		b.err = ErrPluginName
	case b.names[p.Name()]:
		b.err = fmt.Errorf("%w: %q", ErrDuplicatePlugin, p.Name())
	default:
		b.names[p.Name()] = true
		b.plugins = append(b.plugins, p)
	}
	return b
}

// Setup adds a hook that runs after every plugin has been set up and before
// windows are created.
func (b *Builder) Setup(fn func(*App) error) *Builder {
	if fn != nil {
		b.setup = append(b.setup, fn)
	}
	return b
}

func (b *Builder) WithDriver(fn DriverFunc) *Builder {
	if fn != nil {
		b.driver = fn
	}
	return b
}

// Run builds the app and blocks in its run loop.
func (b *Builder) Run(ctx *appctx.Context) error {
	app, err := b.Build(ctx)
	if err != nil {
		return err
	}
	return app.Run()
}

func (b *Builder) Build(ctx *appctx.Context) (*App, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	if b.err != nil {
		return nil, b.err
	}
	if ctx == nil {
		return nil, ErrNilContext
	}

	for _, plugin := range ctx.PermissionPlugins() {
		if plugin != appctx.CorePlugin && !b.names[plugin] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, plugin)
		}
	}

	cfg := ctx.Config
	meta := fyne.AppMetadata{
		ID:      cfg.Identifier,
		Name:    cfg.ProductName,
		Version: cfg.Version,
	}
	var icon fyne.Resource
	name, data, ok, err := ctx.Icon()
	if err != nil {
		return nil, fmt.Errorf("load icon: %w", err)
	}
	if ok {
		icon = fyne.NewStaticResource(name, data)
		meta.Icon = icon
	}
	fyneapp.SetMetadata(meta)

	app := newApp(ctx, b.driver(cfg.Identifier))
	if icon != nil {
		app.fyne.SetIcon(icon)
	}

	for _, p := range b.plugins {
		if err := app.setupPlugin(p); err != nil {
			app.abort()
			return nil, fmt.Errorf("plugin %q: %w", p.Name(), err)
		}
	}

	for _, fn := range b.setup {
		if err := fn(app); err != nil {
			app.abort()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	for i, w := range cfg.App.Windows {
		if err := app.createWindow(w, i == 0); err != nil {
			app.abort()
			return nil, fmt.Errorf("window %q: %w", w.Label, err)
		}
	}

	app.wireLifecycle()
	app.log.Info("Shell", "application built", map[string]interface{}{
		"identifier": cfg.Identifier,
		"version":    cfg.Version,
		"plugins":    app.Plugins(),
		"windows":    app.Windows(),
	})
	return app, nil
}
