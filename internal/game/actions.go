package game

// ActionKind is a player's declared move during TakeAction.
type ActionKind int

const (
	ActFold ActionKind = iota
	ActCheck
	ActCall
	ActRaise
	ActAllIn
)

func (k ActionKind) String() string {
	switch k {
	case ActFold:
		return "Fold"
	case ActCheck:
		return "Check"
	case ActCall:
		return "Call"
	case ActRaise:
		return "Raise"
	case ActAllIn:
		return "AllIn"
	default:
		return "Unknown"
	}
}

// Action is a client's take_action command. Amount is only meaningful for
// ActRaise, where it names the seat's target running investment ("raise
// to"); it is always resanitized against the legal minimum before being
// applied.
type Action struct {
	Kind   ActionKind
	Amount int
}

// LegalActions computes the currently legal action set for seat, per §4.3.
func (g *GameData) LegalActions(seat int) []ActionKind {
	p := g.Players[seat]
	if p == nil {
		return nil
	}
	owed := g.owed(seat)
	legal := []ActionKind{ActFold}

	if !(g.NumActive == 1 && owed == 0) {
		legal = append(legal, ActAllIn)
	}
	if owed > 0 && uint32(owed) < p.Money {
		legal = append(legal, ActCall)
	}
	if owed == 0 {
		legal = append(legal, ActCheck)
	}
	minIncrement := g.minRaiseTo(seat) - g.Pots.Top().Investments[seat]
	if minIncrement < 0 {
		minIncrement = 0
	}
	if g.NumActive > 1 && p.Money > uint32(minIncrement) {
		legal = append(legal, ActRaise)
	}
	return legal
}

// applyAllIn commits a seat's entire remaining stack to the pot, shared by
// ActAllIn and the stack-capped path of ActRaise.
func (g *GameData) applyAllIn(p *Player, top *Pot, prior, amount int) error {
	callBefore := top.Call
	if err := g.Pots.Bet(p.Seat, Bet{Kind: BetAllIn, Amount: amount}); err != nil {
		return err
	}
	newInvestment := prior + amount
	p.Money = 0
	p.State = AllIn
	g.NumActive--
	if newInvestment > callBefore {
		g.NumCalled = 0 // the all-in seat is no longer active, so no active seat has matched the new level yet
	} else {
		g.NumCalled++
	}
	return nil
}

func (g *GameData) owed(seat int) int {
	top := g.Pots.Top()
	owed := top.Call - top.Investments[seat]
	if owed < 0 {
		return 0
	}
	return owed
}

// minRaiseTo returns the minimum legal new running investment for a raise.
func (g *GameData) minRaiseTo(seat int) int {
	top := g.Pots.Top()
	return 2 * top.Call
}

func containsAction(set []ActionKind, k ActionKind) bool {
	for _, a := range set {
		if a == k {
			return true
		}
	}
	return false
}

// TakeActionOp applies a seated player's declared action, resanitizing the
// amount against the legal minimum/maximum before it reaches the pot.
func (g *GameData) TakeActionOp(name string, action Action) error {
	if g.Phase != TakeAction {
		return newUserError(OutOfTurnAction)
	}
	p := g.findPlayer(name)
	if p == nil {
		if g.findUser(name) {
			return newUserError(UserNotPlaying)
		}
		return newUserError(UserDoesNotExist)
	}
	if g.NextActionIdx == nil || *g.NextActionIdx != p.Seat {
		return newUserError(OutOfTurnAction)
	}

	legal := g.LegalActions(p.Seat)
	if !containsAction(legal, action.Kind) {
		return newUserError(InvalidAction, action.Kind)
	}

	top := g.Pots.Top()
	prior := top.Investments[p.Seat]
	callBefore, layersBefore := top.Call, len(g.Pots.Layers())

	switch action.Kind {
	case ActFold:
		p.State = Fold
		g.NumActive--

	case ActCheck:
		p.State = Check
		g.NumCalled++

	case ActCall:
		owed := g.owed(p.Seat)
		if err := g.Pots.Bet(p.Seat, Bet{Kind: BetCall, Amount: owed}); err != nil {
			return newUserError(InvalidBet, action.Kind, owed)
		}
		p.Money -= uint32(owed)
		p.State = Call
		g.NumCalled++

	case ActRaise:
		target := action.Amount
		if min := g.minRaiseTo(p.Seat); target < min {
			target = min
		}
		max := prior + int(p.Money)
		if target > max {
			target = max
		}
		amount := target - prior

		// A raise clamped to the player's entire remaining stack is an
		// all-in in disguise: it must collapse to the same handling
		// ActAllIn uses, or the player is left with Money == 0 but
		// State == Raise (acted() resets that to Wait next round, asking a
		// broke player to act again) and this pot never gets the
		// side-pot-spawn bookkeeping a raise-to-the-felt requires.
		if target == max {
			if err := g.applyAllIn(p, top, prior, amount); err != nil {
				return newUserError(InvalidBet, action.Kind, amount)
			}
			break
		}

		if err := g.Pots.Bet(p.Seat, Bet{Kind: BetRaise, Amount: amount}); err != nil {
			return newUserError(InvalidBet, action.Kind, amount)
		}
		p.Money -= uint32(amount)
		p.State = Raise
		g.NumCalled = 1

	case ActAllIn:
		if err := g.applyAllIn(p, top, prior, int(p.Money)); err != nil {
			return newUserError(InvalidBet, action.Kind, int(p.Money))
		}
	}

	// A bet that lifts the call (or spawns a side pot) puts everyone who
	// had already acted this round back in Wait, owing a turn again.
	if top.Call > callBefore || len(g.Pots.Layers()) > layersBefore {
		for _, o := range g.Players {
			if o != nil && o != p && o.State.acted() {
				o.State = Wait
			}
		}
	}

	g.maybeEndRound()
	if g.Phase == TakeAction && g.NextActionIdx != nil {
		next := g.nextWaiting(*g.NextActionIdx, false)
		if next == -1 {
			g.NumCalled = g.NumActive
			g.maybeEndRound()
		} else {
			g.NextActionIdx = &next
		}
	}
	return nil
}

func (g *GameData) findPlayer(name string) *Player {
	for _, p := range g.Players {
		if p != nil && p.Name == name {
			return p
		}
	}
	return nil
}

func (g *GameData) findUser(name string) bool {
	if _, ok := g.Spectators[name]; ok {
		return true
	}
	for _, u := range g.Waitlist {
		if u.Name == name {
			return true
		}
	}
	return g.findPlayer(name) != nil
}

// NewUser admits a brand-new identity into the spectator pool (the
// Connect command's effect once the session layer has cleared the name).
func (g *GameData) NewUser(name string) error {
	name = truncateName(name)
	if g.findUser(name) {
		return newUserError(UserAlreadyExists)
	}
	if g.totalUsers() >= g.Settings.MaxUsers {
		return newUserError(CapacityReached)
	}
	g.Spectators[name] = User{Name: name, Money: g.Settings.BuyIn}
	return nil
}

func (g *GameData) totalUsers() int {
	return len(g.Spectators) + len(g.Waitlist) + g.countSeated()
}

// WaitlistUser is ChangeState(Play): moves a known spectator onto the
// waitlist so SeatPlayers can seat them on the next hand.
func (g *GameData) WaitlistUser(name string) error {
	if g.findPlayer(name) != nil || g.onWaitlist(name) {
		return nil // already playing or already queued: idempotent
	}
	u, ok := g.Spectators[name]
	if !ok {
		return newUserError(UserDoesNotExist)
	}
	if u.Money < g.BigBlind {
		return newUserError(InsufficientFunds, g.BigBlind)
	}
	delete(g.Spectators, name)
	g.Waitlist = append(g.Waitlist, u)
	return nil
}

func (g *GameData) onWaitlist(name string) bool {
	for _, u := range g.Waitlist {
		if u.Name == name {
			return true
		}
	}
	return false
}

// SpectateUser is ChangeState(Spectate): moves a waitlisted or seated user
// back to spectating. A seated player mid-hand is deferred to the
// spectate queue rather than pulled immediately.
func (g *GameData) SpectateUser(name string) error {
	if p := g.findPlayer(name); p != nil {
		if g.handInProgress() {
			g.SpectateQueue = append(g.SpectateQueue, name)
			return nil
		}
		g.Spectators[p.Name] = p.User
		g.Players[p.Seat] = nil
		g.OpenSeats = append(g.OpenSeats, p.Seat)
		return nil
	}
	for i, u := range g.Waitlist {
		if u.Name == name {
			g.Waitlist = append(g.Waitlist[:i], g.Waitlist[i+1:]...)
			g.Spectators[u.Name] = u
			return nil
		}
	}
	if _, ok := g.Spectators[name]; ok {
		return nil
	}
	return newUserError(UserDoesNotExist)
}

// RemoveUser is the Leave command: drops name from whichever partition it
// currently occupies, queuing a seated removal if a hand is in progress.
func (g *GameData) RemoveUser(name string) error {
	if p := g.findPlayer(name); p != nil {
		if g.handInProgress() {
			if p.State != Fold && p.State != AllIn && p.State != Show {
				p.State = Fold
				g.NumActive--
				g.maybeEndRound()
			}
			g.RemoveQueue = append(g.RemoveQueue, name)
			return nil
		}
		g.Players[p.Seat] = nil
		g.OpenSeats = append(g.OpenSeats, p.Seat)
		return nil
	}
	for i, u := range g.Waitlist {
		if u.Name == name {
			g.Waitlist = append(g.Waitlist[:i], g.Waitlist[i+1:]...)
			return nil
		}
	}
	if _, ok := g.Spectators[name]; ok {
		delete(g.Spectators, name)
		return nil
	}
	return newUserError(UserDoesNotExist)
}

// ShowHandOp is the ShowHand command, legal only from ShowHands through
// UpdateBlinds (while a settled hand's cards are still on the table).
func (g *GameData) ShowHandOp(name string) error {
	switch g.Phase {
	case ShowHands, DistributePot, RemovePlayers, DivideDonations, UpdateBlinds:
	default:
		return newUserError(CannotShowHand)
	}
	p := g.findPlayer(name)
	if p == nil || p.State == Fold {
		return newUserError(CannotShowHand)
	}
	if p.State == Show {
		return newUserError(UserAlreadyShowingHand)
	}
	p.State = Show
	return nil
}

// InitStart is the StartGame command: requests the Lobby → SeatPlayers
// transition, actually applied the next time Step runs.
func (g *GameData) InitStart() error {
	if g.Phase != Lobby {
		return newUserError(GameAlreadyInProgress)
	}
	if g.StartRequested {
		return newUserError(GameAlreadyStarting)
	}
	if g.potentialPlayers() < 2 {
		return newUserError(NotEnoughPlayers)
	}
	g.StartRequested = true
	return nil
}
