package domain

// Snake points by where the group ranked the fake answer
const (
	SnakePointsTop    = 5 // ranked first
	SnakePointsHigh   = 4 // ranked second or third
	SnakePointsLow    = 3 // ranked fourth or fifth
	SnakePointsCaught = 0 // ranked last

	// DoubleDownBonus is awarded for an exactly placed double down
	DoubleDownBonus = 3
)

// ScoreInput is everything the scoring engine needs for one round
type ScoreInput struct {
	RealAnswers []string
	FakeAnswer  string
	FinalOrder  []string
	DoubleDowns map[string]int
	SnakeID     string
	PlayerIDs   []string
}

// PlayerScore is one player's share of a round
type PlayerScore struct {
	PlayerID        string `json:"playerId"`
	IsSnake         bool   `json:"isSnake"`
	RankingPoints   int    `json:"rankingPoints"`
	DoubleDownBonus int    `json:"doubleDownBonus"`
	Total           int    `json:"total"`
	DoubleDown      *int   `json:"doubleDown"`
}

// RoundScore is the scoring engine's output. Deltas are not yet applied to any player.
type RoundScore struct {
	SnakeID     string         `json:"snakeId"`
	FakeIndex   int            `json:"fakeIndex"`
	Caught      bool           `json:"caught"`
	SnakePoints int            `json:"snakePoints"`
	GroupPoints int            `json:"groupPoints"`
	Players     []PlayerScore  `json:"players"`
	Deltas      map[string]int `json:"deltas"`
}

// SnakePoints returns the Snake's reward for a fake ranked at fakeIndex
func SnakePoints(fakeIndex int) int {
	switch fakeIndex {
	case 0:
		return SnakePointsTop
	case 1, 2:
		return SnakePointsHigh
	case 3, 4:
		return SnakePointsLow
	default:
		return SnakePointsCaught
	}
}

// GroupRankingScore counts the positions in the top five that satisfy the band rule.
// The slot holding the fake answer never scores, even when its text collides with a real answer.
func GroupRankingScore(realAnswers []string, finalOrder []string, fakeIndex int) int {
	points := 0
	for pos := 0; pos < RealAnswerCount && pos < len(finalOrder); pos++ {
		if pos == fakeIndex {
			continue
		}
		if IsPositionCorrect(pos, finalOrder[pos], realAnswers) {
			points++
		}
	}
	return points
}

// Score computes the point deltas for a finished round
func Score(in ScoreInput) RoundScore {
	fakeIndex := Ranking(in.FinalOrder).IndexOf(in.FakeAnswer)
	snakePoints := SnakePoints(fakeIndex)
	group := GroupRankingScore(in.RealAnswers, in.FinalOrder, fakeIndex)

	result := RoundScore{
		SnakeID:     in.SnakeID,
		FakeIndex:   fakeIndex,
		Caught:      fakeIndex == AnswerCount-1,
		SnakePoints: snakePoints,
		GroupPoints: group,
		Players:     make([]PlayerScore, 0, len(in.PlayerIDs)),
		Deltas:      make(map[string]int, len(in.PlayerIDs)),
	}

	for _, id := range in.PlayerIDs {
		ps := PlayerScore{PlayerID: id}

		if id == in.SnakeID {
			ps.IsSnake = true
			ps.Total = snakePoints
		} else {
			ps.RankingPoints = group
			if pos, ok := in.DoubleDowns[id]; ok {
				pick := pos
				ps.DoubleDown = &pick
				if doubleDownHits(pos, in.RealAnswers, in.FinalOrder, fakeIndex) {
					ps.DoubleDownBonus = DoubleDownBonus
				}
			}
			ps.Total = ps.RankingPoints + ps.DoubleDownBonus
		}

		result.Players = append(result.Players, ps)
		result.Deltas[id] = ps.Total
	}

	return result
}

func doubleDownHits(pos int, realAnswers, finalOrder []string, fakeIndex int) bool {
	if pos < 0 || pos >= len(realAnswers) || pos >= len(finalOrder) || pos == fakeIndex {
		return false
	}
	return finalOrder[pos] == realAnswers[pos]
}
