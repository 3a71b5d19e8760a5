package core

// Logger is the ambient logging interface used throughout the kernel.
// It mirrors the structured, levelled logging style the rest of the
// package expects adapters (e.g. zerolog) to provide.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Print(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)

	Printf(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// NopLogger discards every message, for callers that need a Logger but
// want no output.
type NopLogger struct{}

func (NopLogger) WithField(string, any) Logger         { return NopLogger{} }
func (NopLogger) WithFields(map[string]any) Logger     { return NopLogger{} }
func (NopLogger) WithError(error) Logger                { return NopLogger{} }
func (NopLogger) Print(...any)                          {}
func (NopLogger) Debug(...any)                           {}
func (NopLogger) Info(...any)                            {}
func (NopLogger) Warn(...any)                            {}
func (NopLogger) Error(...any)                           {}
func (NopLogger) Fatal(...any)                           {}
func (NopLogger) Printf(string, ...any)                  {}
func (NopLogger) Debugf(string, ...any)                  {}
func (NopLogger) Infof(string, ...any)                   {}
func (NopLogger) Warnf(string, ...any)                   {}
func (NopLogger) Errorf(string, ...any)                  {}
func (NopLogger) Fatalf(string, ...any)                  {}
