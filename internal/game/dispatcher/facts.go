package dispatcher

import "GGPoker/internal/game/table"

// Facts are the display values the table view needs for the local player.
// They are derived from one snapshot and never cached.
type Facts struct {
	Seated     bool     `json:"seated"`
	CanAct     bool     `json:"canAct"`
	TotalPot   int      `json:"totalPot"`
	CallAmount int      `json:"callAmount"`
	CanCheck   bool     `json:"canCheck"`
	CanCall    bool     `json:"canCall"`
	MinRaise   int      `json:"minRaise"`
	MaxBet     int      `json:"maxBet"`
	BetAction  Action   `json:"betAction"`
	BetLabel   string   `json:"betLabel"`
	Legal      []Action `json:"legal"`
}

// CallAmount is what p still owes to match the current bet, never negative.
func CallAmount(s table.Snapshot, p table.PlayerState) int {
	if owe := s.CurrentBet - p.TotalBet; owe > 0 {
		return owe
	}
	return 0
}

func CanCheck(s table.Snapshot, p table.PlayerState) bool {
	return p.TotalBet >= s.CurrentBet
}

// BetAction names the aggressive action: bet into an unopened round, raise
// otherwise.
func BetAction(s table.Snapshot) Action {
	if s.CurrentBet > 0 {
		return Raise
	}
	return Bet
}

// Derive computes the facts for playerID. A player who is not seated gets
// neither check nor call.
func Derive(s table.Snapshot, playerID string) Facts {
	f := Facts{
		TotalPot:  s.TotalPot(),
		MinRaise:  s.MinRaise,
		BetAction: BetAction(s),
		BetLabel:  "Bet",
		Legal:     []Action{Ready},
	}
	if f.BetAction == Raise {
		f.BetLabel = "Raise"
	}

	p, ok := s.Player(playerID)
	if !ok {
		return f
	}
	f.Seated = true
	f.MaxBet = p.Stack
	f.CallAmount = CallAmount(s, p)
	f.CanCheck = CanCheck(s, p)
	f.CanCall = !f.CanCheck

	if !p.Active() {
		return f
	}
	f.CanAct = true
	f.Legal = append(f.Legal, Fold)
	if f.CanCheck {
		f.Legal = append(f.Legal, Check)
	} else {
		f.Legal = append(f.Legal, Call)
	}
	if s.MinRaise <= p.Stack {
		f.Legal = append(f.Legal, f.BetAction)
	}
	return f
}
