// ABOUTME: Filter sequence composing several filters in order
// ABOUTME: Output of each filter is the input of the next
package filter

// Sequence applies its filters one after another
type Sequence struct {
	filters []Filter
}

// NewSequence chains filters in the given order. Nil entries are skipped.
func NewSequence(filters ...Filter) *Sequence {
	s := &Sequence{filters: make([]Filter, 0, len(filters))}
	for _, f := range filters {
		if f != nil {
			s.filters = append(s.filters, f)
		}
	}
	return s
}

// Process runs every filter over the samples in order
func (s *Sequence) Process(samples []byte) {
	for _, f := range s.filters {
		f.Process(samples)
	}
}

// Reset resets every filter
func (s *Sequence) Reset() {
	for _, f := range s.filters {
		f.Reset()
	}
}

// RemainingSize returns the longest tail of any filter
func (s *Sequence) RemainingSize() int {
	remaining := 0
	for _, f := range s.filters {
		remaining = max(remaining, f.RemainingSize())
	}
	return remaining
}

// Len returns the number of filters in the sequence
func (s *Sequence) Len() int {
	return len(s.filters)
}
