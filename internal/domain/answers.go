package domain

import "strings"

// NormalizeFakeAnswer trims the Snake's submission and rejects blank text
func NormalizeFakeAnswer(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyFakeAnswer
	}
	return text, nil
}

// InsertFakeAnswer copies the card's real answers and splices the fake answer in at
// the card's FakePosition (1-based). The result always has AnswerCount entries.
// A fake answer that duplicates a real one is kept as a separate entry.
func InsertFakeAnswer(card Card, fake string) []string {
	answers := make([]string, 0, AnswerCount)
	answers = append(answers, card.RealAnswers...)

	at := card.FakePosition - 1
	if at < 0 {
		at = 0
	}
	if at > len(answers) {
		at = len(answers)
	}

	answers = append(answers, "")
	copy(answers[at+1:], answers[at:])
	answers[at] = fake

	return answers
}

// BuildPresentationOrder inserts the fake answer and shuffles all six answers uniformly
func BuildPresentationOrder(card Card, fake string, rng RNG) []string {
	answers := InsertFakeAnswer(card, fake)
	shuffle(answers, rng)
	return answers
}
