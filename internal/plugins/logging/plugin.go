package logging

import (
	"errors"
	"io"
	stdlog "log"
	"sync"
	"time"

	"appshell/internal/eventbus"
	"appshell/internal/logger"
	"appshell/internal/shell"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type Plugin struct {
	level       zerolog.Level
	targets     []Target
	maxFileSize int64
	rotation    RotationStrategy
	json        bool

	lookupEnv func(string) (string, bool)
	logDir    func(identifier string) (string, error)
	stdout    io.Writer
	stderr    io.Writer
	now       func() time.Time

	mu        sync.Mutex
	app       *shell.App
	log       *logger.ZerologAdapter
	files     []*rotatingFile
	installed bool
	prev      globalSink
}

type globalSink struct {
	zerolog zerolog.Logger
	std     io.Writer
	flags   int
}

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Setup(app *shell.App) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.installed {
		return errors.New("already set up")
	}

	warnings := p.applyEnv()
	cfg := app.Context().Config

	writers := make([]io.Writer, 0, len(p.targets))
	for _, t := range p.targets {
		w, err := p.openTarget(t, cfg.Identifier, cfg.ProductName)
		if err != nil {
			p.closeFiles()
			return err
		}
		writers = append(writers, w)
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}
	zl := zerolog.New(out).Level(p.level).With().Timestamp().Logger()

	p.prev = globalSink{zerolog: zlog.Logger, std: stdlog.Writer(), flags: stdlog.Flags()}
	zlog.Logger = zl
	stdlog.SetFlags(0)
	stdlog.SetOutput(zl.With().Str("component", "stdlog").Logger())
	p.installed = true

	p.app = app
	p.log = logger.FromZerolog(zl)
	app.SetLogger(p.log)

	for _, w := range warnings {
		p.log.Warning("Logging", "ignoring environment override", map[string]interface{}{"reason": w})
	}
	p.log.Debug("Logging", "log sink installed", map[string]interface{}{
		"level":    p.level.String(),
		"targets":  len(p.targets),
		"rotation": p.rotation.String(),
		"json":     p.json,
	})
	return nil
}

// OnEvent logs run events. Events tied to a window are only logged when the
// window holds the log permission.
func (p *Plugin) OnEvent(app *shell.App, event eventbus.Event) {
	p.mu.Lock()
	l := p.log
	p.mu.Unlock()
	if l == nil {
		return
	}

	if label, ok := event.Data["label"].(string); ok && !app.Allowed(label, Permission) {
		return
	}

	fields := make(map[string]interface{}, len(event.Data)+1)
	for k, v := range event.Data {
		fields[k] = v
	}
	fields["event"] = event.Type
	l.Debug("Events", "run event", fields)
}

// Shutdown restores the sinks that were installed before Setup and closes
// every file target.
func (p *Plugin) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.installed {
		return
	}
	p.log.Info("Logging", "log sink closing", nil)

	zlog.Logger = p.prev.zerolog
	stdlog.SetOutput(p.prev.std)
	stdlog.SetFlags(p.prev.flags)
	p.installed = false

	if p.app != nil {
		p.app.SetLogger(nil)
	}
	p.log = nil
	p.closeFiles()
}

func (p *Plugin) closeFiles() {
	for _, f := range p.files {
		f.Close()
	}
	p.files = nil
}
