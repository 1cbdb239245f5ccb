package shell

import (
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"appshell/internal/appctx"
	"appshell/internal/eventbus"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shellConfig = `
productName = "ShellTest"
version = "2.0.0"
identifier = "com.example.shelltest"

[bundle]
icon = "icon.png"

[[app.windows]]
title = "Main Window"
url = "index.md"
width = 640
height = 480

[[app.windows]]
label = "notes"
url = "notes.txt"
resizable = false
minWidth = 200
minHeight = 100
`

func shellContext(t *testing.T, config string) *appctx.Context {
	t.Helper()
	ctx, err := appctx.Generate(fstest.MapFS{
		"app.toml":       {Data: []byte(config)},
		"icon.png":       {Data: []byte{0x89, 'P', 'N', 'G'}},
		"dist/index.md":  {Data: []byte("# Welcome\n\nHello.")},
		"dist/notes.txt": {Data: []byte("plain notes")},
	})
	require.NoError(t, err)
	return ctx
}

func testDriver(string) fyne.App { return test.NewApp() }

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakePlugin struct {
	name     string
	setupErr error
	j        *journal
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Setup(*App) error {
	p.j.add("setup:" + p.name)
	return p.setupErr
}

func (p *fakePlugin) Shutdown() { p.j.add("shutdown:" + p.name) }

func (p *fakePlugin) OnEvent(_ *App, e eventbus.Event) {
	label, _ := e.Data["label"].(string)
	p.j.add("event:" + p.name + ":" + e.Type + ":" + label)
}

func TestBuildSetsUpPluginsInOrder(t *testing.T) {
	j := &journal{}
	app, err := Default().
		WithDriver(testDriver).
		Plugin(&fakePlugin{name: "first", j: j}).
		Plugin(&fakePlugin{name: "second", j: j}).
		Setup(func(a *App) error {
			j.add("hook")
			assert.Equal(t, []string{"first", "second"}, a.Plugins())
			assert.Empty(t, a.Windows())
			return nil
		}).
		Build(shellContext(t, shellConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"setup:first", "setup:second", "hook"}, j.list())
	assert.Equal(t, []string{"main", "notes"}, app.Windows())
	assert.Equal(t, "com.example.shelltest", app.Context().Config.Identifier)
	assert.NotNil(t, app.Fyne())
}

func TestBuildCreatesWindowsFromContext(t *testing.T) {
	app, err := Default().WithDriver(testDriver).Build(shellContext(t, shellConfig))
	require.NoError(t, err)

	main, ok := app.Window("main")
	require.True(t, ok)
	assert.Equal(t, "Main Window", main.Title())
	assert.False(t, main.FixedSize())
	scroll, ok := main.Content().(*container.Scroll)
	require.True(t, ok, "markdown content is scrollable")
	_, ok = scroll.Content.(*widget.RichText)
	assert.True(t, ok, "markdown rendered as rich text")

	notes, ok := app.Window("notes")
	require.True(t, ok)
	assert.Equal(t, "ShellTest", notes.Title())
	assert.True(t, notes.FixedSize())
	stack, ok := notes.Content().(*fyne.Container)
	require.True(t, ok, "minimum size wraps content in a stack")
	require.Len(t, stack.Objects, 2)
	assert.GreaterOrEqual(t, stack.MinSize().Width, float32(200))

	_, ok = app.Window("missing")
	assert.False(t, ok)
}

func TestBuildErrors(t *testing.T) {
	j := &journal{}

	t.Run("nil context", func(t *testing.T) {
		_, err := Default().WithDriver(testDriver).Build(nil)
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("nil plugin", func(t *testing.T) {
		_, err := Default().WithDriver(testDriver).Plugin(nil).Build(shellContext(t, shellConfig))
		assert.ErrorIs(t, err, ErrNilPlugin)
	})

	t.Run("empty plugin name", func(t *testing.T) {
		_, err := Default().WithDriver(testDriver).Plugin(&fakePlugin{j: j}).Build(shellContext(t, shellConfig))
		assert.ErrorIs(t, err, ErrPluginName)
	})

	t.Run("duplicate plugin", func(t *testing.T) {
		_, err := Default().WithDriver(testDriver).
			Plugin(&fakePlugin{name: "log", j: j}).
			Plugin(&fakePlugin{name: "log", j: j}).
			Build(shellContext(t, shellConfig))
		assert.ErrorIs(t, err, ErrDuplicatePlugin)
	})

	t.Run("builder reuse", func(t *testing.T) {
		b := Default().WithDriver(testDriver)
		_, err := b.Build(shellContext(t, shellConfig))
		require.NoError(t, err)
		_, err = b.Build(shellContext(t, shellConfig))
		assert.ErrorIs(t, err, ErrBuilderConsumed)
		assert.ErrorIs(t, b.Run(shellContext(t, shellConfig)), ErrBuilderConsumed)
	})

	t.Run("unregistered plugin permission", func(t *testing.T) {
		cfg := shellConfig + `
[[app.security.capabilities]]
identifier = "default"
windows = ["main"]
permissions = ["core:default", "log:default"]
`
		_, err := Default().WithDriver(testDriver).Build(shellContext(t, cfg))
		assert.ErrorIs(t, err, ErrUnknownPlugin)
		assert.Contains(t, err.Error(), `"log"`)
	})

	t.Run("missing window asset", func(t *testing.T) {
		cfg := `
productName = "x"
identifier = "com.x.y"
[[app.windows]]
url = "gone.md"
`
		_, err := Default().WithDriver(testDriver).Build(shellContext(t, cfg))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `window "main": load "gone.md"`)
	})
}

func TestBuildPluginFailureShutsDownEarlierPlugins(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")

	app, err := Default().
		WithDriver(testDriver).
		Plugin(&fakePlugin{name: "a", j: j}).
		Plugin(&fakePlugin{name: "b", j: j}).
		Plugin(&fakePlugin{name: "c", setupErr: boom, j: j}).
		Plugin(&fakePlugin{name: "d", j: j}).
		Build(shellContext(t, shellConfig))

	require.Error(t, err)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, `plugin "c": boom`, err.Error())
	assert.Equal(t, []string{"setup:a", "setup:b", "setup:c", "shutdown:b", "shutdown:a"}, j.list())
}

func TestBuildSetupHookFailure(t *testing.T) {
	j := &journal{}
	_, err := Default().
		WithDriver(testDriver).
		Plugin(&fakePlugin{name: "a", j: j}).
		Setup(func(*App) error { return errors.New("no") }).
		Build(shellContext(t, shellConfig))

	require.EqualError(t, err, "setup: no")
	assert.Equal(t, []string{"setup:a", "shutdown:a"}, j.list())
}
