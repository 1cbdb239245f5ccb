// Package logging is the structured logging plugin. It fans records out to
// console and rotating file targets through zerolog and installs itself as
// the process-wide sink for zerolog's global logger and the standard library
// log package.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	PluginName = "log"
	// Permission gates logging of events that belong to a window.
	Permission = PluginName + ":default"

	DefaultMaxFileSize int64 = 40000
)

type Builder struct {
	level       zerolog.Level
	targets     []Target
	maxFileSize int64
	rotation    RotationStrategy
	json        bool
}

// NewBuilder returns the default configuration: trace level, stdout plus the
// app log directory, 40000 byte files, keep-one rotation, text output.
func NewBuilder() *Builder {
	return &Builder{
		level:       zerolog.TraceLevel,
		targets:     []Target{Stdout(), LogDir("")},
		maxFileSize: DefaultMaxFileSize,
		rotation:    KeepOne(),
	}
}

func (b *Builder) Level(level zerolog.Level) *Builder {
	b.level = level
	return b
}

// Target appends t to the current targets.
func (b *Builder) Target(t Target) *Builder {
	b.targets = append(b.targets, t)
	return b
}

// Targets replaces the current targets.
func (b *Builder) Targets(targets ...Target) *Builder {
	b.targets = append([]Target(nil), targets...)
	return b
}

func (b *Builder) ClearTargets() *Builder {
	b.targets = nil
	return b
}

// MaxFileSize sets the rotation threshold in bytes. Zero disables rotation.
func (b *Builder) MaxFileSize(n int64) *Builder {
	if n < 0 {
		n = 0
	}
	b.maxFileSize = n
	return b
}

func (b *Builder) Rotation(r RotationStrategy) *Builder {
	b.rotation = r
	return b
}

// JSON switches every target from human-readable text to JSON lines.
func (b *Builder) JSON(enabled bool) *Builder {
	b.json = enabled
	return b
}

func (b *Builder) Build() *Plugin {
	return &Plugin{
		level:       b.level,
		targets:     append([]Target(nil), b.targets...),
		maxFileSize: b.maxFileSize,
		rotation:    b.rotation,
		json:        b.json,
		lookupEnv:   os.LookupEnv,
		logDir:      AppLogDir,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		now:         time.Now,
	}
}
