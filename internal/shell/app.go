package shell

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"appshell/internal/appctx"
	"appshell/internal/eventbus"
	"appshell/internal/logger"
	"appshell/internal/shutdown"

	"fyne.io/fyne/v2"
)

const eventBufferSize = 256

// App is the handle plugins and setup hooks receive. It owns the toolkit
// application, the windows created from the context and the run-event bus.
type App struct {
	ctx      *appctx.Context
	fyne     fyne.App
	bus      *eventbus.Bus
	shutdown *shutdown.Manager
	log      logger.Logger

	mu      sync.RWMutex
	sink    logger.Logger
	plugins []string
	windows map[string]fyne.Window
	order   []string

	running  atomic.Bool
	exitOnce sync.Once
	stopOnce sync.Once
}

func newApp(ctx *appctx.Context, fyneApp fyne.App) *App {
	a := &App{
		ctx:     ctx,
		fyne:    fyneApp,
		bus:     eventbus.NewBus(eventBufferSize),
		sink:    logger.NoOpLogger{},
		windows: make(map[string]fyne.Window),
	}
	a.log = delegate{a}
	a.shutdown = shutdown.NewManager(a.log)
	a.bus.SetPanicReporter(func(id string, r interface{}) {
		a.log.Error("Shell", fmt.Errorf("event handler panic: %v", r), map[string]interface{}{
			"handler": id,
		})
	})
	return a
}

func (a *App) Context() *appctx.Context { return a.ctx }

// Fyne exposes the toolkit application.
func (a *App) Fyne() fyne.App { return a.fyne }

// Logger returns a logger that always writes through the currently installed
// sink, so it may be captured before a logging plugin replaces the sink.
func (a *App) Logger() logger.Logger { return a.log }

func (a *App) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NoOpLogger{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = l
}

func (a *App) Plugins() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.plugins...)
}

// Windows lists open window labels in creation order.
func (a *App) Windows() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.order...)
}

func (a *App) Window(label string) (fyne.Window, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	w, ok := a.windows[label]
	return w, ok
}

func (a *App) Allowed(label, permission string) bool {
	return a.ctx.Allowed(label, permission)
}

func (a *App) Emit(eventType string, data map[string]interface{}) {
	if !a.bus.Publish(eventbus.Event{Type: eventType, Data: data}) {
		a.log.Debug("Shell", "event dropped", map[string]interface{}{"event": eventType})
	}
}

func (a *App) Subscribe(eventType string, handler eventbus.EventHandler) {
	a.bus.Subscribe(eventType, handler)
}

// OnShutdown registers a hook run when the app stops, before any hook
// registered earlier.
func (a *App) OnShutdown(name string, s shutdown.Shutdownable) {
	a.shutdown.Register(name, s)
}

// Exit asks the run loop to finish. It must be called from the toolkit's
// goroutine; use fyne.Do from elsewhere.
func (a *App) Exit() {
	a.Emit(EventExitRequested, nil)
	a.fyne.Quit()
}

// Run blocks in the toolkit event loop. Shutdown hooks have all run by the
// time it returns.
func (a *App) Run() (err error) {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.shutdown.Listen(ctx, func(sig os.Signal) {
		a.Emit(EventExitRequested, map[string]interface{}{"signal": sig.String()})
		fyne.Do(a.fyne.Quit)
	})

	defer a.stop()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRunLoop, r)
			a.log.Error("Shell", err, nil)
		}
	}()

	a.log.Info("Shell", "entering run loop", nil)
	a.fyne.Run()
	a.log.Info("Shell", "run loop finished", nil)
	return nil
}

func (a *App) setupPlugin(p Plugin) error {
	if err := p.Setup(a); err != nil {
		return err
	}

	a.mu.Lock()
	a.plugins = append(a.plugins, p.Name())
	a.mu.Unlock()

	if s, ok := p.(Stopper); ok {
		a.shutdown.Register("plugin:"+p.Name(), s)
	}
	if l, ok := p.(EventListener); ok {
		a.bus.Subscribe(eventbus.Wildcard, eventbus.HandlerFunc{
			ID: "plugin:" + p.Name(),
			Fn: func(e eventbus.Event) { l.OnEvent(a, e) },
		})
	}

	a.log.Debug("Shell", "plugin initialized", map[string]interface{}{"plugin": p.Name()})
	return nil
}

func (a *App) wireLifecycle() {
	lc := a.fyne.Lifecycle()
	lc.SetOnStarted(func() {
		a.Emit(EventReady, nil)
	})
	lc.SetOnStopped(a.emitExit)
}

func (a *App) emitExit() {
	a.exitOnce.Do(func() {
		a.Emit(EventExit, nil)
	})
}

// stop delivers the exit event, drains the bus and then runs shutdown hooks.
func (a *App) stop() {
	a.stopOnce.Do(func() {
		a.emitExit()
		a.bus.Shutdown()
		a.shutdown.Shutdown()
	})
}

// abort tears down a partially built app.
func (a *App) abort() {
	a.stopOnce.Do(func() {
		a.mu.RLock()
		windows := make([]fyne.Window, 0, len(a.windows))
		for _, w := range a.windows {
			windows = append(windows, w)
		}
		a.mu.RUnlock()
		for _, w := range windows {
			w.Close()
		}

		a.bus.Shutdown()
		a.shutdown.Shutdown()
	})
}

func (a *App) current() logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sink
}

type delegate struct{ a *App }

func (d delegate) Debug(component, message string, fields map[string]interface{}) {
	d.a.current().Debug(component, message, fields)
}

func (d delegate) Info(component, message string, fields map[string]interface{}) {
	d.a.current().Info(component, message, fields)
}

func (d delegate) Warning(component, message string, fields map[string]interface{}) {
	d.a.current().Warning(component, message, fields)
}

func (d delegate) Error(component string, err error, fields map[string]interface{}) {
	d.a.current().Error(component, err, fields)
}
