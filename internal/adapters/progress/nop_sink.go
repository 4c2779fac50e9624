package progress

import (
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewProgressSink returns a spinner for interactive sessions and a no-op
// sink when output is machine readable
func NewProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.JSON || cfg.Output != "table" {
		return usecase.NopProgress{}
	}
	return NewSpinnerProgressReporter()
}

// NewNotifier returns the terminal notifier, or a quiet one for machine readable output
func NewNotifier(cfg *config.RuntimeConfig) usecase.Notifier {
	if cfg.JSON || cfg.Output != "table" {
		return usecase.NopNotifier{}
	}
	return NewTerminalNotifier(!cfg.NonInteractive)
}
