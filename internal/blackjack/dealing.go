package blackjack

import (
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/game"
)

const (
	// shoeDecks sizes the multi-seat shoe so one committed round can never
	// exhaust it (5 seats x 4 splits leaves plenty of margin in 312 cards).
	shoeDecks = 6

	// commissionPercent is the house cut of a seat's net positive gain.
	commissionPercent = 2
)

// StartRound shuffles a fresh shoe and deals two cards to every wagered seat
// and the dealer. A dealer natural with a ten-or-better up-card resolves the
// whole round immediately; player naturals auto-finish with a blackjack
// result. The first occupied, wagered, unfinished seat becomes the actor, or
// the round settles straight through if none remains.
func (t *Table) StartRound(now time.Time) {
	t.Shoe = game.NewShoe(shoeDecks)
	t.Status = StatusDealing
	t.BettingStartedAt = nil

	for _, seat := range t.Seats {
		if seat == nil || seat.Wager <= 0 {
			continue
		}
		cards := []game.Card{t.Shoe.Draw(), t.Shoe.Draw()}
		seat.Hands = []Hand{{Cards: cards, Wager: seat.Wager}}
		seat.CurrentHandIdx = 0
		seat.Finished = false
		seat.Payout = 0
		seat.NetGain = 0
		seat.Commission = 0
		seat.Credited = false
		seat.InsuranceWager = 0
		seat.InsuranceResult = ""
	}
	t.DealerHand = []game.Card{t.Shoe.Draw(), t.Shoe.Draw()}

	if t.DealerHand[0].Value >= 10 && game.IsNatural(t.DealerHand) {
		for _, seat := range t.Seats {
			if seat == nil || seat.Wager <= 0 {
				continue
			}
			hand := &seat.Hands[0]
			if game.IsNatural(hand.Cards) {
				hand.Result = ResultPush
			} else {
				hand.Result = ResultLoss
			}
			hand.Finished = true
			seat.Finished = true
		}
		t.Settle(now)
		return
	}

	for _, seat := range t.Seats {
		if seat == nil || seat.Wager <= 0 {
			continue
		}
		if game.IsNatural(seat.Hands[0].Cards) {
			seat.Hands[0].Result = ResultBlackjack
			seat.Hands[0].Finished = true
			seat.Finished = true
		}
	}

	t.Status = StatusPlaying
	t.CurrentSeatIdx = -1
	for i, seat := range t.Seats {
		if seat != nil && seat.Wager > 0 && !seat.Finished {
			t.CurrentSeatIdx = i
			t.TurnStartedAt = &now
			break
		}
	}
	if t.CurrentSeatIdx == -1 {
		t.DealerPlay()
		t.Settle(now)
		return
	}
	t.LastUpdate = now
}

// DealerPlay draws for the dealer while the hand scores under 17. The soft
// scoring makes the dealer stand on soft 17; that is the house rule here.
func (t *Table) DealerPlay() {
	t.Status = StatusDealerTurn
	for game.Score(t.DealerHand) < 17 {
		t.DealerHand = append(t.DealerHand, t.Shoe.Draw())
	}
}

// Settle resolves every wagered seat's hands against the dealer, records
// per-seat payout, net gain and commission, and moves the table to finished.
// Chips are not moved here; credit distribution is a separate idempotent step.
func (t *Table) Settle(now time.Time) {
	t.Status = StatusSettling
	dealerScore := game.Score(t.DealerHand)

	for _, seat := range t.Seats {
		if seat == nil || seat.Wager <= 0 {
			continue
		}
		var payout, totalWager int64
		for i := range seat.Hands {
			hand := &seat.Hands[i]
			totalWager += hand.Wager

			switch hand.Result {
			case ResultBust, ResultLoss:
			case ResultBlackjack:
				payout += hand.Wager * 5 / 2
			case ResultPush:
				payout += hand.Wager
			case ResultSurrender:
				payout += hand.Wager / 2
			default:
				score := game.Score(hand.Cards)
				switch {
				case dealerScore > 21 || score > dealerScore:
					hand.Result = ResultWin
					payout += hand.Wager * 2
				case score == dealerScore:
					hand.Result = ResultPush
					payout += hand.Wager
				default:
					hand.Result = ResultLoss
				}
			}
		}

		gross := payout - totalWager
		commission := commissionFor(gross)
		seat.Payout = payout - commission
		seat.NetGain = gross - commission
		seat.Commission = commission
	}

	t.Status = StatusFinished
	t.CurrentSeatIdx = -1
	t.TurnStartedAt = nil
	t.LastUpdate = now
}

// commissionFor returns the house commission on a seat's gross gain:
// max(1, floor(gross*2%)) when positive, zero otherwise.
func commissionFor(gross int64) int64 {
	if gross <= 0 {
		return 0
	}
	c := gross * commissionPercent / 100
	if c < 1 {
		c = 1
	}
	return c
}
