package game

import "github.com/lox/holdem-server/internal/deck"

// PlayerView is one seat's public projection: hole cards are present only
// for the viewing user's own seat, or, for a viewer who is not a
// spectator, any seat whose state is Show.
type PlayerView struct {
	Name  string
	Money uint32
	State PlayerState
	Seat  int
	Hole  []deck.Card
}

// GameView is the per-user snapshot shipped by value on every broadcast.
// Spectators receive one with Players populated but no Hole cards for
// anyone; NextActionIdx is the same for every viewer.
type GameView struct {
	Board          []deck.Card
	PotSize        int
	Players        []PlayerView
	Spectators     []string
	Waitlist       []string
	SmallBlindIdx  int
	BigBlindIdx    int
	NextActionIdx  *int
	SmallBlind     uint32
	BigBlind       uint32
}

// View projects g from the perspective of the user named viewer.
func (g *GameData) View(viewer string) GameView {
	_, spectating := g.Spectators[viewer]
	players := make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		if p == nil {
			continue
		}
		pv := PlayerView{Name: p.Name, Money: p.Money, State: p.State, Seat: p.Seat}
		if p.Name == viewer || (p.State == Show && !spectating) {
			pv.Hole = p.Hole
		}
		players = append(players, pv)
	}

	spectators := make([]string, 0, len(g.Spectators))
	for name := range g.Spectators {
		spectators = append(spectators, name)
	}

	waitlist := make([]string, len(g.Waitlist))
	for i, u := range g.Waitlist {
		waitlist[i] = u.Name
	}

	var next *int
	if g.NextActionIdx != nil {
		idx := *g.NextActionIdx
		next = &idx
	}

	return GameView{
		Board:         g.Board,
		PotSize:       g.Pots.Total(),
		Players:       players,
		Spectators:    spectators,
		Waitlist:      waitlist,
		SmallBlindIdx: g.SmallBlindIdx,
		BigBlindIdx:   g.BigBlindIdx,
		NextActionIdx: next,
		SmallBlind:    g.SmallBlind,
		BigBlind:      g.BigBlind,
	}
}
