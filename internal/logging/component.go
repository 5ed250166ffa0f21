package logging

import "github.com/rs/zerolog"

// ComponentLogger exposes a zerolog.Logger through the key/value method set
// used by the dispatcher.
type ComponentLogger struct {
	zl zerolog.Logger
}

// NewComponentLogger tags every entry with component.
func NewComponentLogger(logger zerolog.Logger, component string) *ComponentLogger {
	return &ComponentLogger{zl: logger.With().Str("component", component).Logger()}
}

func (l *ComponentLogger) Debug(msg string, keysAndValues ...any) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *ComponentLogger) Info(msg string, keysAndValues ...any) {
	l.zl.Info().Fields(keysAndValues).Msg(msg)
}

func (l *ComponentLogger) Error(msg string, keysAndValues ...any) {
	l.zl.Error().Fields(keysAndValues).Msg(msg)
}
