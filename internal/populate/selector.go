package populate

import "env-generator/internal/placement"

// Selector resolves the source object for each instance: either one fixed source
// or a uniform choice (with replacement) among candidates.
type Selector struct {
	candidates []string
	fixed      bool
}

// Single always selects name.
func Single(name string) Selector {
	if name == "" {
		return Selector{fixed: true}
	}
	return Selector{candidates: []string{name}, fixed: true}
}

// Choice selects uniformly among names. Empty names are dropped; the slice is copied.
func Choice(names ...string) Selector {
	s := Selector{}
	for _, n := range names {
		if n != "" {
			s.candidates = append(s.candidates, n)
		}
	}
	return s
}

// Len returns the number of candidates.
func (s Selector) Len() int { return len(s.candidates) }

// Fixed reports whether the selector was built with Single.
func (s Selector) Fixed() bool { return s.fixed }

// Candidates returns a copy of the candidate names.
func (s Selector) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

// Pick returns the source for the next instance. It takes exactly one draw from
// rng even for fixed selectors.
func (s Selector) Pick(rng placement.Rand) (string, error) {
	if len(s.candidates) == 0 {
		return "", ErrEmptySelector
	}
	i := rng.IntN(len(s.candidates))
	if s.fixed {
		return s.candidates[0], nil
	}
	return s.candidates[i], nil
}
