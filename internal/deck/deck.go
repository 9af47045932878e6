package deck

// RandSource is the subset of *rand.Rand the deck needs, so tests and the
// driver can inject a seeded or deterministic source.
type RandSource interface {
	Intn(n int) int
}

// Deck is a fixed 52-card array consumed by a monotonically increasing
// cursor. Dealt cards are never removed from the backing array; Shuffle
// resets the cursor to 0 and reorders cards[0:52] in place.
type Deck struct {
	cards  [52]Card
	cursor int
}

// NewDeck returns a deck in canonical (unshuffled) order.
func NewDeck() *Deck {
	d := &Deck{}
	d.reset()
	return d
}

func (d *Deck) reset() {
	i := 0
	for _, suit := range []Suit{Club, Spade, Diamond, Heart} {
		for v := Two; v <= Ace; v++ {
			d.cards[i] = New(suit, v)
			i++
		}
	}
	d.cursor = 0
}

// Shuffle restores canonical order, then applies a Fisher-Yates shuffle
// driven by rng, and rewinds the cursor to the start of the deck.
func (d *Deck) Shuffle(rng RandSource) {
	d.reset()
	for i := 51; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw returns the next card under the cursor and advances it. ok is false
// once all 52 cards have been dealt.
func (d *Deck) Draw() (card Card, ok bool) {
	if d.cursor >= len(d.cards) {
		return Card{}, false
	}
	card = d.cards[d.cursor]
	d.cursor++
	return card, true
}

// Remaining reports how many cards are still under the cursor.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.cursor
}

// Cursor reports the current deal position, for diagnostics and tests.
func (d *Deck) Cursor() int {
	return d.cursor
}
