package game

import (
	"github.com/lox/holdem-server/internal/deck"
	"github.com/lox/holdem-server/internal/evaluator"
)

// Phase is one of the 15 stages the driver cycles through, per §4.3.
type Phase int

const (
	Lobby Phase = iota
	SeatPlayers
	MoveButton
	CollectBlinds
	Deal
	TakeAction
	FlopPhase
	TurnPhase
	RiverPhase
	ShowHands
	DistributePot
	RemovePlayers
	DivideDonations
	UpdateBlinds
	BootPlayers
)

func (p Phase) String() string {
	switch p {
	case Lobby:
		return "Lobby"
	case SeatPlayers:
		return "SeatPlayers"
	case MoveButton:
		return "MoveButton"
	case CollectBlinds:
		return "CollectBlinds"
	case Deal:
		return "Deal"
	case TakeAction:
		return "TakeAction"
	case FlopPhase:
		return "Flop"
	case TurnPhase:
		return "Turn"
	case RiverPhase:
		return "River"
	case ShowHands:
		return "ShowHands"
	case DistributePot:
		return "DistributePot"
	case RemovePlayers:
		return "RemovePlayers"
	case DivideDonations:
		return "DivideDonations"
	case UpdateBlinds:
		return "UpdateBlinds"
	case BootPlayers:
		return "BootPlayers"
	default:
		return "Unknown"
	}
}

// GameData is the single shared record the 15-phase FSM acts on. Every
// phase transition is a pure function from one Phase value to the next
// over this same record; there is no per-phase carrier type.
type GameData struct {
	Settings Settings
	Phase    Phase

	Deck      *deck.Deck
	Donations float64

	SmallBlind uint32
	BigBlind   uint32

	Spectators map[string]User
	Waitlist   []User
	OpenSeats  []int
	Players    []*Player // index == seat; nil == open

	Board []deck.Card

	NumActive int
	NumCalled int

	Pots *PotStack

	SpectateQueue []string
	RemoveQueue   []string

	SmallBlindIdx     int
	BigBlindIdx       int
	StartingActionIdx int
	NextActionIdx     *int

	StartRequested bool

	rng                deck.RandSource
	showdownCache      map[int]rankedHand
	nextCommunityPhase Phase
}

// NewGame returns a GameData sitting in Lobby, with empty seats and default
// blinds, ready to accept joins.
func NewGame(settings Settings, rng deck.RandSource) *GameData {
	open := make([]int, settings.MaxPlayers)
	for i := range open {
		open[i] = settings.MaxPlayers - 1 - i // popped from the tail, so seat 0 fills first
	}
	return &GameData{
		Settings:      settings,
		Phase:         Lobby,
		Deck:          deck.NewDeck(),
		Spectators:    make(map[string]User),
		OpenSeats:     open,
		Players:       make([]*Player, settings.MaxPlayers),
		SmallBlind:    settings.MinSmallBlind,
		BigBlind:      settings.MinBigBlind,
		Pots:          NewPotStack(),
		BigBlindIdx:   -1,
		SmallBlindIdx: -1,
		rng:           rng,
	}
}

// Step advances the state machine exactly one phase. Lobby is a no-op
// unless a start has been requested with enough potential players.
func (g *GameData) Step() {
	switch g.Phase {
	case Lobby:
		g.stepLobby()
	case SeatPlayers:
		g.stepSeatPlayers()
	case MoveButton:
		g.stepMoveButton()
	case CollectBlinds:
		g.stepCollectBlinds()
	case Deal:
		g.stepDeal()
	case TakeAction:
		// No-op here: TakeAction is driven externally, one action per
		// take_action call. Step never leaves it; maybeEndRound (called
		// from TakeActionOp) moves the phase on once the round has ended.
	case FlopPhase:
		g.stepCommunity(3, TurnPhase)
	case TurnPhase:
		g.stepCommunity(1, RiverPhase)
	case RiverPhase:
		g.stepCommunity(1, ShowHands)
	case ShowHands:
		g.stepShowHands()
	case DistributePot:
		g.stepDistributePot()
	case RemovePlayers:
		g.stepRemovePlayers()
	case DivideDonations:
		g.stepDivideDonations()
	case UpdateBlinds:
		g.stepUpdateBlinds()
	case BootPlayers:
		g.stepBootPlayers()
	}
}

func (g *GameData) stepLobby() {
	if g.StartRequested && g.potentialPlayers() >= 2 {
		g.Phase = SeatPlayers
	}
}

func (g *GameData) potentialPlayers() int {
	n := len(g.Waitlist)
	for _, p := range g.Players {
		if p != nil {
			n++
		}
	}
	return n
}

func (g *GameData) stepSeatPlayers() {
	remaining := g.Waitlist[:0:0]
	for _, u := range g.Waitlist {
		if u.Money < g.BigBlind || len(g.OpenSeats) == 0 {
			if u.Money < g.BigBlind {
				g.Spectators[u.Name] = u
				continue
			}
			remaining = append(remaining, u)
			continue
		}
		seat := g.OpenSeats[len(g.OpenSeats)-1]
		g.OpenSeats = g.OpenSeats[:len(g.OpenSeats)-1]
		g.Players[seat] = &Player{User: u, State: Wait, Seat: seat}
	}
	g.Waitlist = remaining

	g.NumActive = g.countSeated()
	if g.NumActive >= 2 {
		g.Phase = MoveButton
	} else {
		g.StartRequested = false
		g.Phase = Lobby
	}
}

func (g *GameData) countSeated() int {
	n := 0
	for _, p := range g.Players {
		if p != nil {
			n++
		}
	}
	return n
}

func (g *GameData) stepMoveButton() {
	g.BigBlindIdx = g.nextSeated(g.BigBlindIdx, false)
	g.StartingActionIdx = g.nextSeated(g.BigBlindIdx, false)
	g.SmallBlindIdx = g.prevSeated(g.BigBlindIdx)
	g.Phase = CollectBlinds
}

// nextSeated scans cyclically for the next occupied seat after from;
// inclusive controls whether from itself is a candidate.
func (g *GameData) nextSeated(from int, inclusive bool) int {
	n := len(g.Players)
	start := from
	if !inclusive {
		start++
	}
	for i := 0; i < n; i++ {
		idx := ((start+i)%n + n) % n
		if g.Players[idx] != nil {
			return idx
		}
	}
	return -1
}

// nextWaiting scans cyclically for the next seated player still in Wait
// state (i.e. still owed a turn this round), the scan the driver uses to
// find the next actor per §4.3.
func (g *GameData) nextWaiting(from int, inclusive bool) int {
	n := len(g.Players)
	start := from
	if !inclusive {
		start++
	}
	for i := 0; i < n; i++ {
		idx := ((start+i)%n + n) % n
		if p := g.Players[idx]; p != nil && p.State == Wait {
			return idx
		}
	}
	return -1
}

func (g *GameData) prevSeated(from int) int {
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		idx := ((from-i)%n + n) % n
		if g.Players[idx] != nil {
			return idx
		}
	}
	return -1
}

func (g *GameData) stepCollectBlinds() {
	g.Pots.Reset()
	g.NumCalled = 0
	g.postBlind(g.SmallBlindIdx, g.SmallBlind)
	g.postBlind(g.BigBlindIdx, g.BigBlind)
	g.Phase = Deal
}

func (g *GameData) postBlind(seat int, amount uint32) {
	p := g.Players[seat]
	posted := amount
	kind := BetRaise
	allIn := false
	if uint32(p.Money) <= amount {
		posted = p.Money
		kind = BetAllIn
		allIn = true
	}
	_ = g.Pots.Bet(seat, Bet{Kind: kind, Amount: int(posted)})
	p.Money -= posted
	if allIn {
		p.State = AllIn
		g.NumActive--
	}
}

func (g *GameData) stepDeal() {
	g.Deck.Shuffle(g.rng)
	g.Board = nil
	start := g.SmallBlindIdx
	for round := 0; round < 2; round++ {
		seat := start
		for i := 0; i < len(g.Players); i++ {
			if p := g.Players[seat]; p != nil {
				card, ok := g.Deck.Draw()
				if ok {
					p.Hole = append(p.Hole, card)
				}
			}
			seat = (seat + 1) % len(g.Players)
		}
	}
	g.Phase = TakeAction
	g.enterTakeAction()
}

// enterTakeAction sets NextActionIdx to the first waiting seat from
// StartingActionIdx, or ends the round immediately (maybeEndRound) if no
// seated player is left in Wait state to act, e.g. when both blinds went
// all-in.
func (g *GameData) enterTakeAction() {
	idx := g.nextWaiting(g.StartingActionIdx, true)
	if idx == -1 {
		g.NumCalled = g.NumActive
		g.maybeEndRound()
		return
	}
	g.NextActionIdx = &idx
}

// maybeEndRound is invoked by TakeActionOp after every accepted action. It
// ends the current betting round when active == called, when no active
// player remains, or when one active player remains and owes nothing more,
// per §3's invariant.
func (g *GameData) maybeEndRound() {
	settled := g.NumActive <= 0 || g.NumActive == g.NumCalled
	if !settled && g.NumActive == 1 {
		settled = true
		for _, p := range g.Players {
			if p != nil && (p.State == Wait || p.State.acted()) && g.owed(p.Seat) > 0 {
				settled = false
			}
		}
	}
	if settled {
		g.resetRoundStates()
		g.NextActionIdx = nil
		if g.Phase != TakeAction {
			return
		}
		if g.NumActive <= 1 {
			g.dealRemainingBoard()
			g.Phase = ShowHands
			return
		}
		if len(g.Board) == 0 {
			g.Phase = FlopPhase
		} else {
			g.Phase = g.nextCommunityPhase
		}
	}
}

func (g *GameData) resetRoundStates() {
	for _, p := range g.Players {
		if p != nil && p.State.acted() {
			p.State = Wait
		}
	}
}

func (g *GameData) readyForShowdown() bool {
	if g.NumActive <= 1 {
		return true
	}
	capable := 0
	for _, p := range g.Players {
		if p != nil && p.State == Wait {
			capable++
		}
	}
	return capable == 0
}

func (g *GameData) stepCommunity(count int, nextStreet Phase) {
	for i := 0; i < count; i++ {
		card, ok := g.Deck.Draw()
		if !ok {
			break
		}
		g.Board = append(g.Board, card)
	}
	if g.readyForShowdown() {
		g.dealRemainingBoard()
		g.Phase = ShowHands
		return
	}
	g.NumCalled = 0
	g.Phase = TakeAction
	g.nextCommunityPhase = nextStreet
	g.enterTakeAction()
}

func (g *GameData) dealRemainingBoard() {
	for len(g.Board) < 5 {
		card, ok := g.Deck.Draw()
		if !ok {
			break
		}
		g.Board = append(g.Board, card)
	}
}

func (g *GameData) stepShowHands() {
	if g.showdownCache == nil {
		g.evaluateShowdown()
	}
	for _, p := range g.Players {
		if p == nil {
			continue
		}
		if p.State != Fold && p.State != Show {
			p.State = Show
		}
	}
	g.Phase = DistributePot
}

func (g *GameData) evaluateShowdown() {
	g.showdownCache = make(map[int]rankedHand, len(g.Players))
	for _, p := range g.Players {
		if p == nil || p.State == Fold {
			continue
		}
		cards := append(append([]deck.Card(nil), p.Hole...), g.Board...)
		g.showdownCache[p.Seat] = rankedHand{seat: p.Seat, rank: evaluator.Evaluate(cards)}
	}
}

func (g *GameData) stepDistributePot() {
	layers := g.Pots.Layers()
	if len(layers) == 0 {
		g.Phase = RemovePlayers
		return
	}
	top := layers[len(layers)-1]
	result := top.Distribute(g.showdownCache)
	for _, seat := range result.Winners {
		if p := g.Players[seat]; p != nil {
			p.Money += uint32(result.PerSeat)
		}
	}
	g.Donations += float64(result.Residue)
	g.Pots.pots = layers[:len(layers)-1]

	if len(g.Pots.pots) > 0 {
		g.Phase = ShowHands
	} else {
		g.showdownCache = nil
		g.Phase = RemovePlayers
	}
}

func (g *GameData) stepRemovePlayers() {
	for _, name := range g.RemoveQueue {
		g.removeSeatedByName(name)
	}
	g.RemoveQueue = nil
	g.Phase = DivideDonations
}

func (g *GameData) removeSeatedByName(name string) {
	for i, p := range g.Players {
		if p != nil && p.Name == name {
			g.Players[i] = nil
			g.OpenSeats = append(g.OpenSeats, i)
			return
		}
	}
}

func (g *GameData) stepDivideDonations() {
	n := len(g.Spectators) + len(g.Waitlist) + g.countSeated()
	if n > 0 {
		share := float64(int(g.Donations) / n)
		if share > 0 {
			g.Donations -= share * float64(n)
			for name, u := range g.Spectators {
				u.Money += uint32(share)
				g.Spectators[name] = u
			}
			for i := range g.Waitlist {
				g.Waitlist[i].Money += uint32(share)
			}
			for _, p := range g.Players {
				if p != nil {
					p.Money += uint32(share)
				}
			}
		}
	}
	g.Phase = UpdateBlinds
}

func (g *GameData) stepUpdateBlinds() {
	var minMoney uint32
	found := false
	consider := func(money uint32) {
		if money < g.BigBlind {
			return
		}
		if !found || money < minMoney {
			minMoney = money
			found = true
		}
	}
	for _, u := range g.Spectators {
		consider(u.Money)
	}
	for _, u := range g.Waitlist {
		consider(u.Money)
	}
	for _, p := range g.Players {
		if p != nil {
			consider(p.Money)
		}
	}
	k := uint32(1)
	if found && g.Settings.BuyIn > 0 {
		if m := minMoney / g.Settings.BuyIn; m > 1 {
			k = m
		}
	}
	g.SmallBlind = k * g.Settings.MinSmallBlind
	g.BigBlind = k * g.Settings.MinBigBlind
	g.Phase = BootPlayers
}

func (g *GameData) stepBootPlayers() {
	for _, p := range g.Players {
		if p != nil && p.Money < g.BigBlind {
			g.SpectateQueue = append(g.SpectateQueue, p.Name)
		}
	}
	for _, name := range g.SpectateQueue {
		for i, p := range g.Players {
			if p != nil && p.Name == name {
				g.Spectators[p.Name] = p.User
				g.Players[i] = nil
				g.OpenSeats = append(g.OpenSeats, i)
			}
		}
	}
	g.SpectateQueue = nil

	for _, p := range g.Players {
		if p != nil {
			p.State = Wait
			p.Hole = nil
		}
	}
	g.Board = nil
	g.showdownCache = nil
	g.StartRequested = false
	g.Phase = Lobby
}

// handInProgress reports whether the hand has left the lobby but not yet
// fully settled, the window during which remove/spectate of seated
// players must be deferred to RemovePlayers/BootPlayers.
func (g *GameData) handInProgress() bool {
	switch g.Phase {
	case MoveButton, CollectBlinds, Deal, TakeAction, FlopPhase, TurnPhase, RiverPhase, ShowHands, DistributePot:
		return true
	default:
		return false
	}
}
