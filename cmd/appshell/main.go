package main

import (
	"embed"
	"fmt"
	"io/fs"

	"appshell/internal/appctx"
	"appshell/internal/plugins/logging"
	"appshell/internal/shell"

	"github.com/rs/zerolog/log"
)

//go:embed app.toml dist icons
var bundle embed.FS

func main() {
	exitOnError(run(bundle))
}

// run constructs the builder first; nothing else happens before it.
func run(b fs.FS) error {
	builder := newBuilder()

	ctx, err := appctx.Generate(b)
	if err != nil {
		return fmt.Errorf("generate context: %w", err)
	}
	return builder.Run(ctx)
}

// newBuilder attaches the logging plugin with its defaults and nothing else.
func newBuilder() *shell.Builder {
	return shell.Default().Plugin(logging.NewBuilder().Build())
}

// exitOnError terminates the process with status 1 and a diagnostic on
// stderr. Startup failures are not retried.
func exitOnError(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("error while running application")
	}
}
