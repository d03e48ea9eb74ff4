package domain

// RevealEvent is one slot of the final ranking being turned over
type RevealEvent struct {
	Position      int    `json:"position"`
	Answer        string `json:"answer"`
	IsSnakeAnswer bool   `json:"isSnakeAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	TrueRank      int    `json:"trueRank"` // 1-based rank of a real answer, 0 for the fake
}

// bands maps each ranked position to the real-answer indices that count as correct there.
// Rank 1 must be exact, ranks 2-3 and 4-5 are accepted in either order.
var bands = [RealAnswerCount][]int{
	{0},
	{1, 2},
	{1, 2},
	{3, 4},
	{3, 4},
}

// IsPositionCorrect reports whether answer is acceptable at position under the band rule.
// The last position never scores.
func IsPositionCorrect(position int, answer string, realAnswers []string) bool {
	if position < 0 || position >= len(bands) {
		return false
	}
	for _, idx := range bands[position] {
		if idx < len(realAnswers) && realAnswers[idx] == answer {
			return true
		}
	}
	return false
}

// RevealSequencer turns over the final order one slot at a time. It is single use.
type RevealSequencer struct {
	order       []string
	realAnswers []string
	fakeAnswer  string
	next        int
}

// NewRevealSequencer creates a sequencer over a locked ranking
func NewRevealSequencer(finalOrder, realAnswers []string, fakeAnswer string) *RevealSequencer {
	return &RevealSequencer{
		order:       append([]string(nil), finalOrder...),
		realAnswers: append([]string(nil), realAnswers...),
		fakeAnswer:  fakeAnswer,
	}
}

// Next returns the next reveal event, or false once every slot is shown
func (s *RevealSequencer) Next() (RevealEvent, bool) {
	if s.Done() {
		return RevealEvent{}, false
	}

	position := s.next
	answer := s.order[position]
	s.next++

	return s.eventAt(position, answer), true
}

// Done reports whether every slot has been revealed
func (s *RevealSequencer) Done() bool {
	return s.next >= len(s.order)
}

// Revealed returns the events emitted so far
func (s *RevealSequencer) Revealed() []RevealEvent {
	events := make([]RevealEvent, 0, s.next)
	for i := 0; i < s.next; i++ {
		events = append(events, s.eventAt(i, s.order[i]))
	}
	return events
}

// Remaining returns how many slots are still hidden
func (s *RevealSequencer) Remaining() int {
	return len(s.order) - s.next
}

func (s *RevealSequencer) eventAt(position int, answer string) RevealEvent {
	isSnake := answer == s.fakeAnswer && s.isFirstFake(position)

	event := RevealEvent{
		Position:      position,
		Answer:        answer,
		IsSnakeAnswer: isSnake,
	}
	if !isSnake {
		event.IsCorrect = IsPositionCorrect(position, answer, s.realAnswers)
		event.TrueRank = rankOf(answer, s.realAnswers)
	}

	return event
}

// isFirstFake resolves a fake answer that collides with a real one: the first
// occurrence in the final order is treated as the Snake's.
func (s *RevealSequencer) isFirstFake(position int) bool {
	return Ranking(s.order).IndexOf(s.fakeAnswer) == position
}

func rankOf(answer string, realAnswers []string) int {
	for i, candidate := range realAnswers {
		if candidate == answer {
			return i + 1
		}
	}
	return 0
}
