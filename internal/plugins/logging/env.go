package logging

import (
	"strconv"

	"github.com/rs/zerolog"
)

const (
	EnvLevel = "APPSHELL_LOG_LEVEL"
	EnvJSON  = "APPSHELL_LOG_JSON"
)

// applyEnv overrides level and format from the environment. Unparseable
// values are returned as warnings and leave the builder setting in place.
func (p *Plugin) applyEnv() []string {
	var warnings []string

	if v, ok := p.lookupEnv(EnvLevel); ok && v != "" {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			warnings = append(warnings, EnvLevel+": "+err.Error())
		} else {
			p.level = level
		}
	}

	if v, ok := p.lookupEnv(EnvJSON); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			warnings = append(warnings, EnvJSON+": "+err.Error())
		} else {
			p.json = enabled
		}
	}

	return warnings
}
