package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// RealAnswerCount is the number of ground-truth answers on every card
	RealAnswerCount = 5

	// AnswerCount is the number of answers ranked each round (real answers plus the fake)
	AnswerCount = RealAnswerCount + 1
)

// Card is a trivia prompt with its top five answers, most popular first.
// Cards are immutable once loaded.
type Card struct {
	ID           int      `json:"id"`
	Prompt       string   `json:"question"`
	Category     string   `json:"category,omitempty"`
	RealAnswers  []string `json:"answers"`
	FakePosition int      `json:"fakePosition"` // 1-5, where the fake answer is spliced in before shuffling
	Source       string   `json:"source,omitempty"`
}

// UnmarshalJSON reads "fakePosition", falling back to the older "foxPosition" key
func (c *Card) UnmarshalJSON(data []byte) error {
	type plain Card
	var aux struct {
		plain
		FoxPosition int `json:"foxPosition"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*c = Card(aux.plain)
	if c.FakePosition == 0 {
		c.FakePosition = aux.FoxPosition
	}
	return nil
}

// Validate checks the card against the deck schema
func (c Card) Validate() error {
	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("%w: card %d has no question", ErrInvalidCard, c.ID)
	}
	if len(c.RealAnswers) != RealAnswerCount {
		return fmt.Errorf("%w: card %d has %d answers, want %d", ErrInvalidCard, c.ID, len(c.RealAnswers), RealAnswerCount)
	}
	for i, answer := range c.RealAnswers {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("%w: card %d answer %d is blank", ErrInvalidCard, c.ID, i+1)
		}
	}
	if c.FakePosition < 1 || c.FakePosition > RealAnswerCount {
		return fmt.Errorf("%w: card %d fake position %d outside 1-%d", ErrInvalidCard, c.ID, c.FakePosition, RealAnswerCount)
	}
	return nil
}

// TrueRank returns the 1-based rank of answer on this card, or 0 if it is not a real answer
func (c Card) TrueRank(answer string) int {
	return rankOf(answer, c.RealAnswers)
}

// CardPrompt is a card without its answers, safe to show while the group is still guessing
type CardPrompt struct {
	ID       int    `json:"id"`
	Prompt   string `json:"question"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ToPrompt strips the answers from the card
func (c Card) ToPrompt() CardPrompt {
	return CardPrompt{
		ID:       c.ID,
		Prompt:   c.Prompt,
		Category: c.Category,
		Source:   c.Source,
	}
}

func (c Card) clone() Card {
	c.RealAnswers = append([]string(nil), c.RealAnswers...)
	return c
}
