package techstack

// Set is an insertion-ordered set of labels. The zero value is ready to use.
type Set struct {
	index map[string]int
	items []string
}

// Add inserts label and reports whether it was new.
func (s *Set) Add(label string) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[label]; ok {
		return false
	}
	s.index[label] = len(s.items)
	s.items = append(s.items, label)
	return true
}

// AddAll inserts every label.
func (s *Set) AddAll(labels ...string) {
	for _, l := range labels {
		s.Add(l)
	}
}

// Has reports whether label is present.
func (s *Set) Has(label string) bool {
	_, ok := s.index[label]
	return ok
}

// Len returns the number of labels.
func (s *Set) Len() int { return len(s.items) }

// Items returns the labels in insertion order. The slice is a copy.
func (s *Set) Items() []string {
	return append([]string{}, s.items...)
}
