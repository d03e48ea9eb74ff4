package domain

// RoundContext is the transient state of the round in play. It is rebuilt when the
// Snake locks in a card and discarded when the next round starts.
type RoundContext struct {
	Number       int
	SnakeIndex   int
	SnakeID      string
	Card         Card
	FakeAnswer   string
	Presentation []string
	FinalOrder   []string
	DoubleDowns  map[string]int
	TimedOut     bool
}

func newRoundContext(number, snakeIndex int, snakeID string, card Card, fake string, rng RNG) *RoundContext {
	return &RoundContext{
		Number:       number,
		SnakeIndex:   snakeIndex,
		SnakeID:      snakeID,
		Card:         card.clone(),
		FakeAnswer:   fake,
		Presentation: BuildPresentationOrder(card, fake, rng),
		DoubleDowns:  make(map[string]int),
	}
}

// lock records the collector's result on the round
func (r *RoundContext) lock(c *RankingCollector) {
	r.FinalOrder = c.Order()
	r.DoubleDowns = c.DoubleDowns()
	r.TimedOut = c.TimedOut()
}

func (r *RoundContext) scoreInput(playerIDs []string) ScoreInput {
	return ScoreInput{
		RealAnswers: r.Card.RealAnswers,
		FakeAnswer:  r.FakeAnswer,
		FinalOrder:  r.FinalOrder,
		DoubleDowns: r.DoubleDowns,
		SnakeID:     r.SnakeID,
		PlayerIDs:   playerIDs,
	}
}

// RoundRecord is a scored round kept in the game's history
type RoundRecord struct {
	Number     int        `json:"number"`
	SnakeID    string     `json:"snakeId"`
	Card       Card       `json:"card"`
	FakeAnswer string     `json:"fakeAnswer"`
	FinalOrder []string   `json:"finalOrder"`
	TimedOut   bool       `json:"timedOut"`
	Score      RoundScore `json:"score"`
}

func newRoundRecord(r *RoundContext, score RoundScore) RoundRecord {
	return RoundRecord{
		Number:     r.Number,
		SnakeID:    r.SnakeID,
		Card:       r.Card.clone(),
		FakeAnswer: r.FakeAnswer,
		FinalOrder: append([]string(nil), r.FinalOrder...),
		TimedOut:   r.TimedOut,
		Score:      score,
	}
}

func (r RoundRecord) clone() RoundRecord {
	r.Card = r.Card.clone()
	r.FinalOrder = append([]string(nil), r.FinalOrder...)
	r.Score = r.Score.clone()
	return r
}

func (s RoundScore) clone() RoundScore {
	players := make([]PlayerScore, len(s.Players))
	for i, ps := range s.Players {
		if ps.DoubleDown != nil {
			pick := *ps.DoubleDown
			ps.DoubleDown = &pick
		}
		players[i] = ps
	}
	s.Players = players

	deltas := make(map[string]int, len(s.Deltas))
	for id, d := range s.Deltas {
		deltas[id] = d
	}
	s.Deltas = deltas

	return s
}
