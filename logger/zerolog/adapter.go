// Package zerolog adapts github.com/rs/zerolog to the core.Logger
// interface the simulation kernel depends on.
package zerolog

import (
	"fmt"

	"github.com/raykavin/backtestkernel/core"

	"github.com/rs/zerolog"
)

// Adapter wraps a *zerolog.Logger so it satisfies core.Logger.
type Adapter struct {
	*zerolog.Logger
}

// NewAdapter builds a core.Logger backed by the given zerolog logger.
func NewAdapter(logger *zerolog.Logger) *Adapter {
	return &Adapter{logger}
}

func (z *Adapter) Print(args ...any) { z.Logger.Print(args...) }

func (z *Adapter) Debug(args ...any) { z.Logger.Debug().Msg(fmt.Sprint(args...)) }

func (z *Adapter) Fatal(args ...any) { z.Logger.Fatal().Msg(fmt.Sprint(args...)) }

func (z *Adapter) Info(args ...any) { z.Logger.Info().Msg(fmt.Sprint(args...)) }

func (z *Adapter) Warn(args ...any) { z.Logger.Warn().Msg(fmt.Sprint(args...)) }

func (z *Adapter) Error(args ...any) { z.Logger.Error().Msg(fmt.Sprint(args...)) }

func (z *Adapter) Printf(format string, args ...any) { z.Logger.Printf(format, args...) }

func (z *Adapter) Debugf(format string, args ...any) { z.Logger.Debug().Msgf(format, args...) }

func (z *Adapter) Infof(format string, args ...any) { z.Logger.Info().Msgf(format, args...) }

func (z *Adapter) Warnf(format string, args ...any) { z.Logger.Warn().Msgf(format, args...) }

func (z *Adapter) Errorf(format string, args ...any) { z.Logger.Error().Msgf(format, args...) }

func (z *Adapter) Fatalf(format string, args ...any) { z.Logger.Fatal().Msgf(format, args...) }

// WithError implements core.Logger.
func (z *Adapter) WithError(err error) core.Logger {
	newLogger := z.With().Err(err).Logger()
	return &Adapter{&newLogger}
}

// WithField implements core.Logger.
func (z *Adapter) WithField(key string, value any) core.Logger {
	newLogger := z.With().Interface(key, value).Logger()
	return &Adapter{&newLogger}
}

// WithFields implements core.Logger.
func (z *Adapter) WithFields(fields map[string]any) core.Logger {
	newLogger := z.With().Fields(fields).Logger()
	return &Adapter{&newLogger}
}
