package evaluator

import "github.com/lox/holdem-server/internal/deck"

// Evaluate scores 5 to 7 cards and returns the best 5-card HandRank they
// contain. The single pass mirrors classic lookup-table evaluators: tally
// rank/suit occurrence and a rank bitmap, then test categories strongest
// to weakest so the first match found is the winner.
//
// Panics if fewer than 5 or more than 7 cards are supplied; callers only
// ever evaluate a player's hole cards plus the board, both fixed in size,
// so this is a programmer error rather than a runtime condition.
func Evaluate(cards []deck.Card) HandRank {
	if len(cards) < 5 || len(cards) > 7 {
		panic("evaluator: Evaluate requires 5 to 7 cards")
	}

	var rankCounts [15]int // index 2..14
	var suitCounts [4]int
	var rankBits uint32

	for _, c := range cards {
		rankCounts[c.Value]++
		suitCounts[c.Suit]++
		rankBits |= 1 << uint(c.Value)
	}

	flushSuit := -1
	for s := 0; s < 4; s++ {
		if suitCounts[s] >= 5 {
			flushSuit = s
			break
		}
	}

	if flushSuit != -1 {
		var flushBits uint32
		var flushValues [7]int
		n := 0
		for _, c := range cards {
			if int(c.Suit) == flushSuit {
				flushBits |= 1 << uint(c.Value)
				flushValues[n] = int(c.Value)
				n++
			}
		}

		if high := findStraight(flushBits); high > 0 {
			return HandRank(StraightFlush<<20 | (15 - high))
		}

		top5 := highestN(flushValues[:n], 5)
		return HandRank(Flush<<20 | encode(top5))
	}

	var fours, threes, pairs [4]int
	var nFours, nThrees, nPairs int
	for v := 14; v >= 2; v-- {
		switch rankCounts[v] {
		case 4:
			fours[nFours] = v
			nFours++
		case 3:
			threes[nThrees] = v
			nThrees++
		case 2:
			pairs[nPairs] = v
			nPairs++
		}
	}

	if nFours > 0 {
		kicker := highestExcluding(rankCounts, fours[0])
		return HandRank(FourOfAKind<<20 | (15-fours[0])<<4 | (15 - kicker))
	}

	if nThrees > 0 && (nPairs > 0 || nThrees > 1) {
		tripRank := threes[0]
		var pairRank int
		if nThrees > 1 {
			pairRank = threes[1]
		} else {
			pairRank = pairs[0]
		}
		return HandRank(FullHouse<<20 | (15-tripRank)<<4 | (15 - pairRank))
	}

	if high := findStraight(rankBits); high > 0 {
		return HandRank(Straight<<20 | (15 - high))
	}

	if nThrees > 0 {
		kickers := nHighestSingles(rankCounts, 2, threes[0])
		return HandRank(ThreeOfAKind<<20 | (15-threes[0])<<8 | (15-kickers[0])<<4 | (15 - kickers[1]))
	}

	if nPairs >= 2 {
		kicker := highestExcluding(rankCounts, pairs[0], pairs[1])
		return HandRank(TwoPair<<20 | (15-pairs[0])<<8 | (15-pairs[1])<<4 | (15 - kicker))
	}

	if nPairs == 1 {
		kickers := nHighestSingles(rankCounts, 3, pairs[0])
		return HandRank(OnePair<<20 | (15-pairs[0])<<12 | (15-kickers[0])<<8 | (15-kickers[1])<<4 | (15 - kickers[2]))
	}

	highs := nHighestSingles(rankCounts, 5)
	return HandRank(HighCard<<20 | encode(highs))
}

// findStraight returns the straight's high card (5 for the wheel A-2-3-4-5)
// or 0 if rankBits contains no 5 consecutive values. Bit 14 (ace) doubles as
// the low end of the wheel check.
func findStraight(rankBits uint32) int {
	wheel := uint32(1<<14 | 1<<5 | 1<<4 | 1<<3 | 1<<2)
	if rankBits&wheel == wheel {
		return 5
	}
	for high := 14; high >= 6; high-- {
		mask := uint32(0x1F) << uint(high-4)
		if rankBits&mask == mask {
			return high
		}
	}
	return 0
}

// highestExcluding finds the highest rank present in the hand, skipping excl.
func highestExcluding(rankCounts [15]int, excl ...int) int {
	for v := 14; v >= 2; v-- {
		if rankCounts[v] == 0 {
			continue
		}
		skip := false
		for _, e := range excl {
			if v == e {
				skip = true
				break
			}
		}
		if !skip {
			return v
		}
	}
	return 0
}

// nHighestSingles returns the n highest singleton ranks, excluding excl.
func nHighestSingles(rankCounts [15]int, n int, excl ...int) []int {
	out := make([]int, n)
	found := 0
	for v := 14; v >= 2 && found < n; v-- {
		if rankCounts[v] != 1 {
			continue
		}
		skip := false
		for _, e := range excl {
			if v == e {
				skip = true
				break
			}
		}
		if !skip {
			out[found] = v
			found++
		}
	}
	return out
}

func highestN(values []int, n int) []int {
	sorted := append([]int(nil), values...)
	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] > sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// encode packs values (highest card first) into a tiebreak int with the
// first value in the most significant nibble, each inverted via (15-v) so
// a numerically higher card yields a numerically smaller tiebreak, matching
// HandRank.Compare's "lower value wins" convention.
func encode(values []int) int {
	n := len(values)
	if n > 5 {
		n = 5
	}
	out := 0
	for i := 0; i < n; i++ {
		out |= (15 - values[i]) << uint(4*(n-1-i))
	}
	return out
}
