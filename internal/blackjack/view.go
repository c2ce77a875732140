package blackjack

import (
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/game"
	"github.com/google/uuid"
)

// CardView is a card as shown to clients. The dealer's hole card is replaced
// by a hidden sentinel until the dealer acts.
type CardView struct {
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Value  int    `json:"value,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

type HandView struct {
	Cards    []CardView `json:"cards"`
	Score    int        `json:"score"`
	Wager    int64      `json:"wager"`
	Finished bool       `json:"finished"`
	Result   HandResult `json:"result,omitempty"`
}

type SeatView struct {
	SeatIdx         int             `json:"seat_idx"`
	Empty           bool            `json:"empty"`
	Name            string          `json:"name,omitempty"`
	IsMe            bool            `json:"is_me,omitempty"`
	Wager           int64           `json:"wager,omitempty"`
	Finished        bool            `json:"finished,omitempty"`
	Hands           []HandView      `json:"hands,omitempty"`
	CurrentHandIdx  int             `json:"current_hand_idx,omitempty"`
	Payout          int64           `json:"payout,omitempty"`
	NetGain         int64           `json:"net_gain,omitempty"`
	InsuranceWager  int64           `json:"insurance_wager,omitempty"`
	InsuranceResult InsuranceResult `json:"insurance_result,omitempty"`
}

// TableView is the filtered projection of a table for one requesting
// identity: hole card masked, per-identity flags and available actions, and
// the countdown of the current betting or turn window.
type TableView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	MinWager       int64      `json:"min_wager"`
	MaxWager       int64      `json:"max_wager"`
	MaxSeats       int        `json:"max_seats"`
	Status         Status     `json:"status"`
	RoundNumber    int        `json:"round_number"`
	Seats          []SeatView `json:"seats"`
	DealerCards    []CardView `json:"dealer_cards"`
	DealerScore    int        `json:"dealer_score,omitempty"`
	CurrentSeatIdx int        `json:"current_seat_idx"`
	TimerSeconds   *int       `json:"timer_seconds,omitempty"`
	MySeat         int        `json:"my_seat"`
	IsMyTurn       bool       `json:"is_my_turn"`
	CanBet         bool       `json:"can_bet"`
	CanHit         bool       `json:"can_hit"`
	CanStand       bool       `json:"can_stand"`
	CanDouble      bool       `json:"can_double"`
	CanSplit       bool       `json:"can_split"`
	CanInsurance   bool       `json:"can_insurance"`
	CanSurrender   bool       `json:"can_surrender"`
	Balance        int64      `json:"balance"`
	LastUpdate     time.Time  `json:"last_update"`
}

// View builds the client projection of the table relative to the requesting
// player and their current balance.
func (t *Table) View(playerID uuid.UUID, balance int64, now time.Time) *TableView {
	mySeat := t.SeatOf(playerID)

	view := &TableView{
		ID:             t.ID,
		Name:           t.Name,
		MinWager:       t.MinWager,
		MaxWager:       t.MaxWager,
		MaxSeats:       t.MaxSeats,
		Status:         t.Status,
		RoundNumber:    t.RoundNumber,
		CurrentSeatIdx: t.CurrentSeatIdx,
		MySeat:         mySeat,
		Balance:        balance,
		LastUpdate:     t.LastUpdate,
	}

	view.Seats = make([]SeatView, len(t.Seats))
	for i, seat := range t.Seats {
		if seat == nil {
			view.Seats[i] = SeatView{SeatIdx: i, Empty: true}
			continue
		}
		sv := SeatView{
			SeatIdx:         i,
			Name:            seat.Name,
			IsMe:            i == mySeat,
			Wager:           seat.Wager,
			Finished:        seat.Finished,
			CurrentHandIdx:  seat.CurrentHandIdx,
			Payout:          seat.Payout,
			NetGain:         seat.NetGain,
			InsuranceWager:  seat.InsuranceWager,
			InsuranceResult: seat.InsuranceResult,
		}
		for _, h := range seat.Hands {
			hv := HandView{
				Score:    game.Score(h.Cards),
				Wager:    h.Wager,
				Finished: h.Finished,
				Result:   h.Result,
			}
			for _, c := range h.Cards {
				hv.Cards = append(hv.Cards, CardView{Suit: c.Suit, Rank: c.Rank, Value: c.Value})
			}
			sv.Hands = append(sv.Hands, hv)
		}
		view.Seats[i] = sv
	}

	showHole := t.Status == StatusDealerTurn || t.Status == StatusSettling || t.Status == StatusFinished
	if len(t.DealerHand) > 0 {
		if showHole {
			for _, c := range t.DealerHand {
				view.DealerCards = append(view.DealerCards, CardView{Suit: c.Suit, Rank: c.Rank, Value: c.Value})
			}
			view.DealerScore = game.Score(t.DealerHand)
		} else {
			up := t.DealerHand[0]
			view.DealerCards = []CardView{
				{Suit: up.Suit, Rank: up.Rank, Value: up.Value},
				{Hidden: true},
			}
			view.DealerScore = up.Value
		}
	}

	switch {
	case t.Status == StatusBetting && t.BettingStartedAt != nil:
		view.TimerSeconds = remainingSeconds(BettingTimeout, now.Sub(*t.BettingStartedAt))
	case t.Status == StatusPlaying && t.TurnStartedAt != nil:
		view.TimerSeconds = remainingSeconds(TurnTimeout, now.Sub(*t.TurnStartedAt))
	}

	view.IsMyTurn = t.Status == StatusPlaying && mySeat >= 0 && mySeat == t.CurrentSeatIdx
	if view.IsMyTurn {
		seat := t.Seats[mySeat]
		if hand := seat.ActiveHand(); hand != nil && !hand.Finished {
			score := game.Score(hand.Cards)
			view.CanHit = score < 21
			view.CanStand = true
			view.CanDouble = len(hand.Cards) == 2 && balance >= hand.Wager
			view.CanSplit = game.IsSplittable(hand.Cards) && len(seat.Hands) < maxHandsPerSeat && balance >= seat.Wager
			view.CanInsurance = len(t.DealerHand) > 0 && t.DealerHand[0].Rank == "A" &&
				len(seat.Hands) == 1 && len(hand.Cards) == 2 &&
				seat.InsuranceResult == "" && balance >= seat.Wager/2
			view.CanSurrender = len(seat.Hands) == 1 && len(hand.Cards) == 2
		}
	}

	view.CanBet = (t.Status == StatusWaiting || t.Status == StatusBetting) &&
		mySeat >= 0 && t.Seats[mySeat].Wager == 0

	return view
}

func remainingSeconds(window, elapsed time.Duration) *int {
	secs := int((window - elapsed + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &secs
}
