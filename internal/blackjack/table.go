package blackjack

import (
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/game"
	"github.com/google/uuid"
)

// Status is the table state machine phase.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusBetting    Status = "betting"
	StatusDealing    Status = "dealing"
	StatusPlaying    Status = "playing"
	StatusDealerTurn Status = "dealer_turn"
	StatusSettling   Status = "settling"
	StatusFinished   Status = "finished"
)

// HandResult is the settled outcome of a single hand. Empty until resolved.
type HandResult string

const (
	ResultWin       HandResult = "win"
	ResultLoss      HandResult = "loss"
	ResultPush      HandResult = "push"
	ResultBust      HandResult = "bust"
	ResultBlackjack HandResult = "blackjack"
	ResultSurrender HandResult = "surrender"
)

// InsuranceResult records how a seat's insurance side wager resolved.
type InsuranceResult string

const (
	InsuranceWon      InsuranceResult = "won"
	InsuranceLost     InsuranceResult = "lost"
	InsuranceDeclined InsuranceResult = "declined"
)

// Hand is one playable hand at a seat. A seat holds up to four hands after
// splitting. Finished is monotone: once true it never reverts.
type Hand struct {
	Cards    []game.Card `json:"cards"`
	Wager    int64       `json:"wager"`
	Finished bool        `json:"finished"`
	Result   HandResult  `json:"result,omitempty"`
}

// Seat is one numbered position at the table. Empty seats are nil entries in
// Table.Seats, never removed from the array.
type Seat struct {
	PlayerID        uuid.UUID       `json:"player_id"`
	Name            string          `json:"name"`
	Wager           int64           `json:"wager"`
	Hands           []Hand          `json:"hands"`
	CurrentHandIdx  int             `json:"current_hand_idx"`
	Finished        bool            `json:"finished"`
	Payout          int64           `json:"payout"`
	NetGain         int64           `json:"net_gain"`
	Commission      int64           `json:"commission"`
	Credited        bool            `json:"credited,omitempty"`
	InsuranceWager  int64           `json:"insurance_wager,omitempty"`
	InsuranceResult InsuranceResult `json:"insurance_result,omitempty"`
}

// ActiveHand returns the seat's hand under the cursor, or nil.
func (s *Seat) ActiveHand() *Hand {
	if s.CurrentHandIdx < 0 || s.CurrentHandIdx >= len(s.Hands) {
		return nil
	}
	return &s.Hands[s.CurrentHandIdx]
}

// Table is the single source of truth for one blackjack table. It is read,
// mutated locally and written back wholesale under the table lock; it is
// never shared between handlers as a live reference.
type Table struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	MinWager         int64       `json:"min_wager"`
	MaxWager         int64       `json:"max_wager"`
	MaxSeats         int         `json:"max_seats"`
	Status           Status      `json:"status"`
	Shoe             game.Shoe   `json:"shoe"`
	DealerHand       []game.Card `json:"dealer_hand"`
	Seats            []*Seat     `json:"seats"`
	CurrentSeatIdx   int         `json:"current_seat_idx"`
	RoundNumber      int         `json:"round_number"`
	BettingStartedAt *time.Time  `json:"betting_started_at,omitempty"`
	TurnStartedAt    *time.Time  `json:"turn_started_at,omitempty"`
	LastUpdate       time.Time   `json:"last_update"`
}

// Definition is the static configuration a table is lazily created from.
type Definition struct {
	ID       string
	Name     string
	MinWager int64
	MaxWager int64
	MaxSeats int
}

// DefaultTables are the tables the casino runs. Table records are created
// from these on first reference and recreated if the store evicts them.
var DefaultTables = []Definition{
	{ID: "table-1", Name: "Table Bronze", MinWager: 100, MaxWager: 1000, MaxSeats: 5},
	{ID: "table-2", Name: "Table Silver", MinWager: 500, MaxWager: 2500, MaxSeats: 5},
	{ID: "table-3", Name: "Table Gold", MinWager: 1000, MaxWager: 5000, MaxSeats: 3},
}

// DefinitionByID looks up a static table definition.
func DefinitionByID(id string) (Definition, bool) {
	for _, def := range DefaultTables {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// NewTable creates an empty waiting table from a static definition.
func NewTable(def Definition, now time.Time) *Table {
	return &Table{
		ID:             def.ID,
		Name:           def.Name,
		MinWager:       def.MinWager,
		MaxWager:       def.MaxWager,
		MaxSeats:       def.MaxSeats,
		Status:         StatusWaiting,
		Seats:          make([]*Seat, def.MaxSeats),
		CurrentSeatIdx: -1,
		LastUpdate:     now,
	}
}

// SeatOf returns the seat index occupied by the player, or -1.
func (t *Table) SeatOf(playerID uuid.UUID) int {
	for i, s := range t.Seats {
		if s != nil && s.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// HasWagers reports whether any occupied seat has placed a wager.
func (t *Table) HasWagers() bool {
	for _, s := range t.Seats {
		if s != nil && s.Wager > 0 {
			return true
		}
	}
	return false
}

// FullyCredited reports whether every wagered seat's settlement has been
// distributed. A finished round must not reset before this holds, or unpaid
// winnings would be wiped with it.
func (t *Table) FullyCredited() bool {
	for _, s := range t.Seats {
		if s != nil && s.Wager > 0 && !s.Credited {
			return false
		}
	}
	return true
}

// ResetForNextRound returns the table to waiting, keeping occupants seated
// but clearing wagers, hands and per-round results.
func (t *Table) ResetForNextRound(now time.Time) {
	t.Status = StatusWaiting
	t.Shoe = nil
	t.DealerHand = nil
	t.CurrentSeatIdx = -1
	t.BettingStartedAt = nil
	t.TurnStartedAt = nil
	t.LastUpdate = now

	for _, s := range t.Seats {
		if s == nil {
			continue
		}
		s.Wager = 0
		s.Hands = nil
		s.CurrentHandIdx = 0
		s.Finished = true
		s.Payout = 0
		s.NetGain = 0
		s.Commission = 0
		s.Credited = false
		s.InsuranceWager = 0
		s.InsuranceResult = ""
	}
}

// ForceFinishAll marks every unfinished hand and seat finished. Used by the
// stale-game sweep before forcing dealer play and settlement.
func (t *Table) ForceFinishAll() {
	for _, s := range t.Seats {
		if s == nil || s.Finished {
			continue
		}
		for i := range s.Hands {
			s.Hands[i].Finished = true
		}
		s.Finished = true
	}
}

// advanceTurn moves the (seat, hand) cursor to the next unfinished hand,
// auto-finishing hands that already stand at 21, and runs dealer play plus
// settlement once no hand remains. Iterative on purpose: a recursive
// "advance to next" can nest across every split of every seat.
func (t *Table) advanceTurn(now time.Time) {
	for {
		if t.CurrentSeatIdx >= 0 && t.CurrentSeatIdx < len(t.Seats) {
			if seat := t.Seats[t.CurrentSeatIdx]; seat != nil && !seat.Finished {
				idx := seat.CurrentHandIdx
				for idx < len(seat.Hands) && seat.Hands[idx].Finished {
					idx++
				}
				if idx < len(seat.Hands) {
					seat.CurrentHandIdx = idx
					if game.Score(seat.Hands[idx].Cards) == 21 {
						seat.Hands[idx].Finished = true
						continue
					}
					t.TurnStartedAt = &now
					return
				}
				seat.Finished = true
			}
		}

		next := t.CurrentSeatIdx + 1
		for next < len(t.Seats) {
			s := t.Seats[next]
			if s != nil && s.Wager > 0 && !s.Finished {
				break
			}
			next++
		}
		if next >= len(t.Seats) {
			t.DealerPlay()
			t.Settle(now)
			return
		}
		t.CurrentSeatIdx = next
	}
}
