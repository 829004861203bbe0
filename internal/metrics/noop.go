package metrics

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// ConnectionOpened is a no-op.
func (n *NoopCollector) ConnectionOpened() {}

// ConnectionClosed is a no-op.
func (n *NoopCollector) ConnectionClosed() {}

// TLSConnectionEstablished is a no-op.
func (n *NoopCollector) TLSConnectionEstablished() {}

// LoginAttempt is a no-op.
func (n *NoopCollector) LoginAttempt(result string) {}

// CommandProcessed is a no-op.
func (n *NoopCollector) CommandProcessed(command string) {}

// ParseError is a no-op.
func (n *NoopCollector) ParseError() {}

// MessageRouted is a no-op.
func (n *NoopCollector) MessageRouted() {}

// MessageBuffered is a no-op.
func (n *NoopCollector) MessageBuffered() {}

// MessagesDelivered is a no-op.
func (n *NoopCollector) MessagesDelivered(count int) {}
