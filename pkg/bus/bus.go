// Package bus implements the synchronous publish/subscribe channel the
// editor uses to announce state changes to the host application.
//
// Dispatch is synchronous and runs on the caller's goroutine: the editor is
// single-threaded and every mutation, path recompute, and notification runs
// to completion before the next input event is processed. Listeners must not
// block.
package bus

// Handler receives the payload published for an event.
type Handler func(payload any)

// Subscription identifies a registered handler so it can be removed with
// [Bus.Off]. Subscriptions are never reused within one Bus.
type Subscription int

type entry struct {
	sub Subscription
	fn  Handler
}

// Bus is a named-event dispatcher. The zero value is not usable; create
// instances with [New]. Bus is not safe for concurrent use: the editor model
// is cooperative and single-threaded.
type Bus struct {
	handlers map[string][]entry
	next     Subscription
	diag     func(msg string)
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{handlers: make(map[string][]entry), next: 1}
}

// SetDiagnostic installs the sink for programmer-error reports, such as
// subscribing with a nil handler or an empty event name. Malformed calls are
// reported there and return a failure indicator instead of panicking.
func (b *Bus) SetDiagnostic(fn func(msg string)) {
	b.diag = fn
}

func (b *Bus) report(msg string) {
	if b.diag != nil {
		b.diag(msg)
	}
}

// On registers a handler for the named event and returns its subscription
// token. It reports a diagnostic and returns false if the event name is
// empty or the handler is nil.
func (b *Bus) On(event string, fn Handler) (Subscription, bool) {
	if event == "" {
		b.report("bus: event name must not be empty")
		return 0, false
	}
	if fn == nil {
		b.report("bus: handler for " + event + " must not be nil")
		return 0, false
	}
	sub := b.next
	b.next++
	b.handlers[event] = append(b.handlers[event], entry{sub: sub, fn: fn})
	return sub, true
}

// Off removes the handler registered under sub for the named event.
// It returns false if no such registration exists.
func (b *Bus) Off(event string, sub Subscription) bool {
	entries := b.handlers[event]
	for i, e := range entries {
		if e.sub == sub {
			b.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	b.report("bus: no subscription " + event + " to remove")
	return false
}

// Emit synchronously invokes every handler registered for the event, in
// registration order. Handlers registered while Emit runs are not invoked
// for the current event.
func (b *Bus) Emit(event string, payload any) {
	entries := b.handlers[event]
	// Snapshot so handlers may subscribe/unsubscribe during dispatch.
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	for _, e := range snapshot {
		e.fn(payload)
	}
}

// HandlerCount returns the number of handlers registered for the event.
func (b *Bus) HandlerCount(event string) int {
	return len(b.handlers[event])
}
