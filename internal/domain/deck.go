package domain

const (
	// HandSize is how many cards the Snake is offered each turn
	HandSize = 3

	// MaxReshuffleAttempts bounds the anti-repeat retries when the draw pile is rebuilt
	MaxReshuffleAttempts = 6
)

// CardSource offers the Snake a fresh hand of cards each turn
type CardSource interface {
	DrawThree() []Card
}

// Deck is a CardSource that draws without replacement from a shuffled pile.
// When fewer than HandSize cards remain, the whole deck is reshuffled into a new pile.
type Deck struct {
	cards    []Card
	pile     []int // indices into cards, next card first
	lastDraw map[int]bool
	rng      RNG
}

// NewDeck creates a deck over the given cards. At least HandSize cards are required;
// eight or more are needed for the anti-repeat rule to be effective.
func NewDeck(cards []Card, rng RNG) (*Deck, error) {
	if len(cards) < HandSize {
		return nil, ErrDeckTooSmall
	}

	owned := make([]Card, len(cards))
	for i, c := range cards {
		owned[i] = c.clone()
	}

	d := &Deck{
		cards:    owned,
		lastDraw: make(map[int]bool),
		rng:      rng,
	}
	d.refill()

	return d, nil
}

// Size returns the number of cards in the full deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// Remaining returns the number of undrawn cards in the current pile
func (d *Deck) Remaining() int {
	return len(d.pile)
}

// DrawThree draws HandSize cards from the pile, rebuilding the pile first if it runs short
func (d *Deck) DrawThree() []Card {
	if len(d.pile) < HandSize {
		d.refill()
	}

	hand := make([]Card, HandSize)
	drawn := make(map[int]bool, HandSize)
	for i := range HandSize {
		card := d.cards[d.pile[i]]
		hand[i] = card.clone()
		drawn[card.ID] = true
	}
	d.pile = d.pile[HandSize:]
	d.lastDraw = drawn

	return hand
}

// refill reshuffles the entire deck into a new pile, retrying a bounded number of times
// so the next hand does not repeat a card from the previous one.
func (d *Deck) refill() {
	pile := make([]int, len(d.cards))
	for attempt := 0; attempt < MaxReshuffleAttempts; attempt++ {
		for i := range pile {
			pile[i] = i
		}
		shuffle(pile, d.rng)

		if !d.repeatsLastDraw(pile[:HandSize]) {
			break
		}
	}
	d.pile = pile
}

func (d *Deck) repeatsLastDraw(indices []int) bool {
	for _, idx := range indices {
		if d.lastDraw[d.cards[idx].ID] {
			return true
		}
	}
	return false
}
