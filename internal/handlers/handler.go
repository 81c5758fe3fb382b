// Package handlers holds the plumbing shared by long-running bus
// consumers.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/trackarr/internal/events"
)

// Handler processes events of specific types.
type Handler interface {
	// Start begins processing events (blocking).
	Start(ctx context.Context) error

	// Name returns handler name for logging.
	Name() string
}

// BaseHandler provides common handler functionality.
type BaseHandler struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewBaseHandler creates a base handler. The logger is tagged with name.
func NewBaseHandler(name string, bus *events.Bus, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		bus:    bus,
		logger: logger.With("handler", name),
	}
}

// Bus returns the event bus.
func (h *BaseHandler) Bus() *events.Bus {
	return h.bus
}

// Logger returns the handler's logger.
func (h *BaseHandler) Logger() *slog.Logger {
	return h.logger
}

// Run starts every handler and blocks until all have returned. A handler
// stopping because ctx ended is not an error.
func Run(ctx context.Context, logger *slog.Logger, hs ...Handler) error {
	if logger == nil {
		logger = slog.Default()
	}
	errs := make(chan error, len(hs))
	for _, h := range hs {
		go func() {
			logger.Info("handler started", "handler", h.Name())
			err := h.Start(ctx)
			if err != nil && ctx.Err() != nil {
				err = nil
			}
			if err != nil {
				logger.Error("handler stopped", "handler", h.Name(), "error", err)
			}
			errs <- err
		}()
	}
	var first error
	for range hs {
		if err := <-errs; err != nil && first == nil {
			first = err
		}
	}
	return first
}
