package client

import "fmt"

// ProtocolViolationError is panicked when the coordinator/client protocol
// invariant is broken (spec.md §7 kind 4): an accepted message delivered
// out of order, or an accepted update that the server already validated
// somehow failing to apply to this client's mirror. Both indicate a bug in
// the transport or coordinator, not a recoverable merge conflict — the
// offending participant should be aborted and, if the host application
// wants to recover, resynced from scratch.
type ProtocolViolationError struct {
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("client: protocol violation: %s", e.Reason)
}
