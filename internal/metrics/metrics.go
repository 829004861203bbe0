// Package metrics provides interfaces and implementations for collecting
// chat broker metrics. This package defines the Collector interface for
// recording metrics and the Server interface for exposing them.
package metrics

import "context"

// Collector defines the interface for recording broker metrics.
type Collector interface {
	// Connection metrics
	ConnectionOpened()
	ConnectionClosed()
	TLSConnectionEstablished()

	// Login metrics; result is "success", "duplicate", "unauthorized",
	// or "not_found"
	LoginAttempt(result string)

	// Command metrics, by wire verb
	CommandProcessed(command string)
	ParseError()

	// Routing metrics. Routed counts every accepted Send; Buffered counts
	// the subset pushed to a cache mailbox for an offline receiver;
	// Delivered counts responses drained to a wire.
	MessageRouted()
	MessageBuffered()
	MessagesDelivered(count int)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
