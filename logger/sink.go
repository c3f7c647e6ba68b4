package logger

import "github.com/rs/zerolog"

// Sink receives diagnostic messages from the transport and endpoint clients.
// The message is produced lazily so that a disabled sink costs nothing.
type Sink func(msg func() string)

// NopSink discards every message.
func NopSink(func() string) {}

// Emit sends a message to s, treating a nil sink as NopSink.
func (s Sink) Emit(msg func() string) {
	if s != nil {
		s(msg)
	}
}

// Sink adapts the logger into a Sink writing at the given level. The message
// function is only called when the level is enabled.
func (l *Logger) Sink(level zerolog.Level) Sink {
	zl := l.logger
	return func(msg func() string) {
		if e := zl.WithLevel(level); e.Enabled() {
			e.Msg(msg())
		}
	}
}
