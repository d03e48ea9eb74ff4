// Package cards loads the card catalog the deck draws from. Each record is
// {id, question, category?, answers[5], fakePosition 1-5, source?}; the older
// foxPosition key is read as fakePosition.
package cards

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"outfox/internal/domain"
)

//go:embed data/*.json
var cardFS embed.FS

const embeddedFile = "data/cards.json"

// MinRecommended is the catalog size below which the anti-repeat draw stops being effective
const MinRecommended = 8

// Store loads the card catalog once and hands out copies.
// An empty path selects the embedded catalog.
type Store struct {
	path string

	once  sync.Once
	cards []domain.Card
	err   error
}

// NewStore creates a store reading from path, or from the embedded catalog when path is empty
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Source names where the catalog comes from
func (s *Store) Source() string {
	if s.path == "" {
		return "embedded"
	}
	return s.path
}

func (s *Store) init() {
	var (
		raw []byte
		err error
	)
	if s.path == "" {
		raw, err = cardFS.ReadFile(embeddedFile)
	} else {
		raw, err = os.ReadFile(s.path)
	}
	if err != nil {
		s.err = fmt.Errorf("read cards %s: %w", s.Source(), err)
		return
	}

	cards, err := Parse(raw)
	if err != nil {
		s.err = fmt.Errorf("load cards %s: %w", s.Source(), err)
		return
	}
	s.cards = cards
}

// Cards returns the validated catalog
func (s *Store) Cards() ([]domain.Card, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}

	out := make([]domain.Card, len(s.cards))
	for i, c := range s.cards {
		c.RealAnswers = append([]string(nil), c.RealAnswers...)
		out[i] = c
	}
	return out, nil
}

// NewDeck builds a fresh draw pile over the catalog
func (s *Store) NewDeck(rng domain.RNG) (*domain.Deck, error) {
	cards, err := s.Cards()
	if err != nil {
		return nil, err
	}
	return domain.NewDeck(cards, rng)
}

// Parse decodes and validates a JSON card list
func Parse(raw []byte) ([]domain.Card, error) {
	var cards []domain.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if len(cards) < domain.HandSize {
		return nil, fmt.Errorf("%w: got %d", domain.ErrDeckTooSmall, len(cards))
	}

	seen := make(map[int]bool, len(cards))
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", domain.ErrInvalidCard, c.ID)
		}
		seen[c.ID] = true
	}

	return cards, nil
}
