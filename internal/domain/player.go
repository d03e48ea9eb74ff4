package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlayerColors are assigned by seat
var PlayerColors = []string{"Orange", "Blue", "Green", "Purple", "Pink", "Yellow"}

// Seat is a roster entry supplied at game start
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player represents a player at the table
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

// NewPlayer creates a player for the given seat (0-based). Blank names become "Player N".
func NewPlayer(id, name string, seat int) *Player {
	return &Player{
		ID:    id,
		Name:  normalizeName(name, seat),
		Color: PlayerColors[seat%len(PlayerColors)],
	}
}

// AddPoints adds a round delta. Scores never decrease.
func (p *Player) AddPoints(points int) {
	if points > 0 {
		p.Score += points
	}
}

// ResetScore zeroes the player's score for a restart
func (p *Player) ResetScore() {
	p.Score = 0
}

// PlayerInfo is a read-only copy of player data
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color,
		Score: p.Score,
	}
}

func normalizeName(name string, seat int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Player %d", seat+1)
	}

	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
