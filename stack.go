package capsule

// resolutionStack records the registrations currently being constructed
// within a single top-level resolution call. Each call owns its stack, so
// concurrent resolutions never share cycle-detection state.
type resolutionStack struct {
	keys []serviceKey
}

func (s *resolutionStack) contains(k serviceKey) bool {
	for _, key := range s.keys {
		if key == k {
			return true
		}
	}

	return false
}

func (s *resolutionStack) push(k serviceKey) {
	s.keys = append(s.keys, k)
}

// popIfTop removes k only when it is the topmost entry. Failure paths may
// leave deeper entries behind; popping blindly would corrupt the stack.
func (s *resolutionStack) popIfTop(k serviceKey) {
	if n := len(s.keys); n > 0 && s.keys[n-1] == k {
		s.keys = s.keys[:n-1]
	}
}

// chain returns the in-flight constructions as formatted keys, oldest first.
func (s *resolutionStack) chain() []string {
	chain := make([]string, len(s.keys))
	for i, k := range s.keys {
		chain[i] = k.String()
	}

	return chain
}
