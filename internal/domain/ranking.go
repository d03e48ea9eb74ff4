package domain

// Ranking is an ordered list of answers, position 0 being rank 1
type Ranking []string

// ApplyMove returns a copy of the ranking with the item at from removed and
// re-inserted at to. The receiver is not modified.
func (r Ranking) ApplyMove(from, to int) (Ranking, error) {
	if from < 0 || from >= len(r) || to < 0 || to >= len(r) {
		return nil, ErrReorderOutOfBounds
	}

	next := make(Ranking, 0, len(r))
	next = append(next, r[:from]...)
	next = append(next, r[from+1:]...)

	moved := r[from]
	next = append(next, "")
	copy(next[to+1:], next[to:])
	next[to] = moved

	return next, nil
}

// IndexOf returns the first position holding answer, or -1
func (r Ranking) IndexOf(answer string) int {
	for i, a := range r {
		if a == answer {
			return i
		}
	}
	return -1
}

// IsPermutationOf reports whether r holds exactly the same multiset of answers as other
func (r Ranking) IsPermutationOf(other []string) bool {
	if len(r) != len(other) {
		return false
	}
	counts := make(map[string]int, len(other))
	for _, a := range other {
		counts[a]++
	}
	for _, a := range r {
		counts[a]--
		if counts[a] < 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (r Ranking) Clone() Ranking {
	return append(Ranking(nil), r...)
}
