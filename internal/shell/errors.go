package shell

import "errors"

var (
	ErrBuilderConsumed = errors.New("builder already consumed")
	ErrNilContext      = errors.New("nil application context")
	ErrNilPlugin       = errors.New("nil plugin")
	ErrPluginName      = errors.New("plugin name must not be empty")
	ErrDuplicatePlugin = errors.New("plugin already registered")
	ErrUnknownPlugin   = errors.New("capability references unregistered plugin")
	ErrAlreadyRunning  = errors.New("run loop already started")
	ErrRunLoop         = errors.New("run loop failed")
)
