package aggregate

import "sync"

// Slot owns at most one live handle for a logical UI slot (one search
// box, one info screen). Acquiring a new handle for the slot cancels
// the previous one, so at most one aggregation per slot is in flight.
type Slot struct {
	mu      sync.Mutex
	current *Handle
}

// Swap installs h as the slot's live handle, cancelling its
// predecessor. Passing nil just cancels the current handle.
func (s *Slot) Swap(h *Handle) {
	s.mu.Lock()
	prev := s.current
	s.current = h
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// Current returns the slot's live handle, or nil.
func (s *Slot) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
