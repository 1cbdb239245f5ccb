package shell

import "appshell/internal/eventbus"

// Plugin is a capability attached to the builder before launch. Its name is
// also the prefix of the permissions it owns, e.g. "log" for "log:default".
type Plugin interface {
	Name() string
	Setup(app *App) error
}

// Stopper is implemented by plugins that hold resources. Stop hooks run in
// reverse registration order when the app exits.
type Stopper interface {
	Shutdown()
}

// EventListener is implemented by plugins that want every run event.
type EventListener interface {
	OnEvent(app *App, event eventbus.Event)
}
