package identity

import "sync"

// Provider exposes the current identity and notifies subscribers when it changes.
type Provider interface {
	Current() Identity
	// Subscribe registers fn to be called with every new identity. The returned
	// function removes the subscription.
	Subscribe(fn func(Identity)) (unsubscribe func())
}

// Static is a Provider whose identity never changes.
type Static Identity

// Current returns the fixed identity.
func (s Static) Current() Identity { return Identity(s) }

// Subscribe never calls fn.
func (s Static) Subscribe(func(Identity)) func() { return func() {} }

// Source is a settable Provider. Subscribers are called synchronously by Set,
// in subscription order, after the new identity is visible through Current.
type Source struct {
	mu      sync.Mutex
	current Identity
	nextID  int
	subs    map[int]func(Identity)
	order   []int
}

// NewSource creates a Source holding initial.
func NewSource(initial Identity) *Source {
	return &Source{
		current: initial,
		subs:    make(map[int]func(Identity)),
	}
}

// Current returns the latest identity.
func (s *Source) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn for identity changes.
func (s *Source) Subscribe(fn func(Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Set replaces the identity. Subscribers are notified only when it actually changes.
func (s *Source) Set(id Identity) {
	s.mu.Lock()
	if s.current == id {
		s.mu.Unlock()
		return
	}
	s.current = id
	fns := make([]func(Identity), 0, len(s.order))
	for _, k := range s.order {
		fns = append(fns, s.subs[k])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}
