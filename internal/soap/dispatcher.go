package soap

import (
	"context"
	"errors"
	"log/slog"
)

// Handler executes one operation against the store. It returns the response
// payload, or an error that is either a *Fault or an unexpected failure.
type Handler func(ctx context.Context, args Args) (any, error)

// Key addresses one operation within a registry.
type Key struct {
	Service   string
	Port      string
	Operation string
}

// Registry binds operation triples to handlers. It is populated once at
// startup and read-only afterwards, so concurrent dispatch needs no locking.
type Registry struct {
	handlers map[Key]Handler
	logger   *slog.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[Key]Handler),
		logger:   logger,
	}
}

// Register binds a handler to a (service, port, operation) triple.
func (r *Registry) Register(service, port, operation string, h Handler) {
	r.handlers[Key{Service: service, Port: port, Operation: operation}] = h
}

// Dispatch resolves the operation and runs it. Every call completes with
// either a payload or a well-formed fault: unresolvable triples, unexpected
// errors and handler panics are all mapped to a Server fault with the cause
// logged, never surfaced to the caller.
func (r *Registry) Dispatch(ctx context.Context, service, port, operation string, args Args) (payload any, fault *Fault) {
	h, ok := r.handlers[Key{Service: service, Port: port, Operation: operation}]
	if !ok {
		r.logger.Warn("operation not registered",
			"service", service, "port", port, "operation", operation)
		return nil, ServerFault("unknown operation")
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panic",
				"service", service, "operation", operation, "panic", rec)
			payload = nil
			fault = ServerFault(internalErrorReason)
		}
	}()

	result, err := h(ctx, args)
	if err != nil {
		return nil, r.mapError(service, operation, err)
	}
	return result, nil
}

// mapError classifies a handler error. Faults pass through untouched; any
// other error becomes a generic Server fault.
func (r *Registry) mapError(service, operation string, err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	r.logger.Error("operation failed",
		"service", service, "operation", operation, "error", err)
	return ServerFault(internalErrorReason)
}
