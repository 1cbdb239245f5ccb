package shell

const (
	EventReady         = "ready"
	EventWindowCreated = "window-created"
	EventWindowClosed  = "window-closed"
	EventExitRequested = "exit-requested"
	EventExit          = "exit"
)
