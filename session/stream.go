package session

import "github.com/erpinterno/erpadmin/credstore"

// Subscription is a read-only handle on the current-user stream. The channel
// carries nil while the session is Unauthenticated or AuthenticatedPending
// and the profile once Authenticated. Close releases the handle; holding one
// past the owning component's teardown leaks a listener.
type Subscription struct {
	service *Service
	updates chan *credstore.Profile
	closed  bool
}

// Updates returns the stream channel. It delivers the latest value at
// subscription time, then every subsequent transition. Slow consumers only
// ever see the most recent value; intermediate values may be dropped.
func (s *Subscription) Updates() <-chan *credstore.Profile {
	return s.updates
}

// Close unsubscribes and closes the updates channel. Safe to call twice.
func (s *Subscription) Close() {
	s.service.mu.Lock()
	defer s.service.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(s.service.subs, s)
	close(s.updates)
}

// push delivers a value with latest-wins semantics. Callers hold service.mu,
// so the drain-then-send below cannot race another producer.
func (s *Subscription) push(p *credstore.Profile) {
	select {
	case <-s.updates:
	default:
	}
	s.updates <- p
}
