package game

import "github.com/lox/holdem-server/internal/evaluator"

// rankedHand pairs a seat's evaluated hand with the seat itself, so a pot
// layer's winner computation doesn't need a side map back to players.
type rankedHand struct {
	seat int
	rank evaluator.HandRank
}

// argMaxRanked mirrors evaluator.ArgMax but over rankedHand, since a pot's
// eligible seats aren't necessarily contiguous player indices.
func argMaxRanked(hands []rankedHand) []int {
	ranks := make([]evaluator.HandRank, len(hands))
	for i, h := range hands {
		ranks[i] = h.rank
	}
	return evaluator.ArgMax(ranks)
}
