package domain_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"outfox/internal/domain"
)

type fixedRNG struct{ val int }

func (r fixedRNG) Intn(n int) int { return r.val % n }

type seededRNG struct{ r *rand.Rand }

func newSeededRNG(seed uint64) seededRNG {
	return seededRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s seededRNG) Intn(n int) int { return s.r.IntN(n) }

func letterCard(id int) domain.Card {
	return domain.Card{
		ID:           id,
		Prompt:       fmt.Sprintf("Question %d", id),
		RealAnswers:  []string{"A", "B", "C", "D", "E"},
		FakePosition: 3,
	}
}

func capitalsCard() domain.Card {
	return domain.Card{
		ID:           1,
		Prompt:       "Most visited European capitals",
		Category:     "Travel",
		RealAnswers:  []string{"Paris", "London", "Rome", "Tokyo", "Cairo"},
		FakePosition: 3,
	}
}

func testCards(n int) []domain.Card {
	cards := make([]domain.Card, n)
	for i := range n {
		cards[i] = letterCard(i + 1)
	}
	return cards
}

func threeSeats() []domain.Seat {
	return []domain.Seat{
		{ID: "p1", Name: "ada"},
		{ID: "p2", Name: "bo"},
		{ID: "p3", Name: "cy"},
	}
}

func intPtr(v int) *int { return &v }

// arrange reorders the group's working order until it matches target
func arrange(t *testing.T, g *domain.Game, target []string) {
	t.Helper()

	for pos, want := range target {
		order := g.Snapshot().Ranking.Order
		from := -1
		for i := pos; i < len(order); i++ {
			if order[i] == want {
				from = i
				break
			}
		}
		if from < 0 {
			t.Fatalf("answer %q not found in %v", want, order)
		}
		if err := g.Reorder(from, pos); err != nil {
			t.Fatalf("reorder %d -> %d: %v", from, pos, err)
		}
	}

	if got := g.Snapshot().Ranking.Order; fmt.Sprint(got) != fmt.Sprint(target) {
		t.Fatalf("order = %v, want %v", got, target)
	}
}

// startedGame returns a game in SnakeTurn over a deck holding only card plus fillers
func startedGame(t *testing.T, card domain.Card, seats []domain.Seat, opts domain.Options) *domain.Game {
	t.Helper()

	cards := []domain.Card{card, letterCard(card.ID + 100), letterCard(card.ID + 200)}
	deck, err := domain.NewDeck(cards, newSeededRNG(7))
	if err != nil {
		t.Fatalf("NewDeck: %v", err)
	}

	g := domain.NewGame("TEST01", deck, newSeededRNG(11))
	if err := g.StartGame(seats, opts); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return g
}

// playRound drives one full round: the Snake bluffs with fake on card, the group locks
// target, and every reveal is advanced.
func playRound(t *testing.T, g *domain.Game, cardID int, fake string, target []string, picks map[string]int) {
	t.Helper()

	if err := g.SubmitFakeAnswer(cardID, fake); err != nil {
		t.Fatalf("SubmitFakeAnswer: %v", err)
	}
	arrange(t, g, target)
	if err := g.LockRanking(); err != nil {
		t.Fatalf("LockRanking: %v", err)
	}
	for id, pos := range picks {
		if err := g.SelectDoubleDown(id, intPtr(pos)); err != nil {
			t.Fatalf("SelectDoubleDown(%s): %v", id, err)
		}
	}
	if err := g.LockDoubleDowns(); err != nil {
		t.Fatalf("LockDoubleDowns: %v", err)
	}
	for i := 0; i < domain.AnswerCount; i++ {
		if _, err := g.AdvanceReveal(); err != nil {
			t.Fatalf("AdvanceReveal %d: %v", i, err)
		}
	}
	if g.Phase() != domain.PhaseScoring {
		t.Fatalf("phase = %s, want SCORING", g.Phase())
	}
}
