package blackjack

import "time"

// Wall-clock windows driving passive table transitions.
const (
	BettingTimeout = 20 * time.Second
	TurnTimeout    = 30 * time.Second
	StaleTimeout   = 5 * time.Minute
	FinishedReset  = 10 * time.Second
)

// Sweep applies every due time-based transition and reports whether the
// table changed. It runs on every read and write before other logic. The
// checks are ordered: an earlier transition can make a later check
// inapplicable in the same pass (a stale force-finish leaves no turn to
// time out, for example).
func (t *Table) Sweep(now time.Time) bool {
	changed := false

	// A finished round only resets once its payouts are distributed; until
	// then the table lingers so every access retries the credit step.
	if t.Status == StatusFinished && now.Sub(t.LastUpdate) > FinishedReset && t.FullyCredited() {
		t.ResetForNextRound(now)
		changed = true
	}

	if t.Status == StatusPlaying && now.Sub(t.LastUpdate) > StaleTimeout {
		t.ForceFinishAll()
		t.DealerPlay()
		t.Settle(now)
		changed = true
	}

	if t.Status == StatusBetting && t.BettingStartedAt != nil && now.Sub(*t.BettingStartedAt) > BettingTimeout {
		if t.HasWagers() {
			t.StartRound(now)
		} else {
			t.Status = StatusWaiting
			t.BettingStartedAt = nil
			t.LastUpdate = now
		}
		changed = true
	}

	if t.Status == StatusPlaying && t.TurnStartedAt != nil && now.Sub(*t.TurnStartedAt) > TurnTimeout {
		t.autoStand(now)
		changed = true
	}

	return changed
}

// autoStand stands the current seat's active hand and advances the turn,
// exactly as an explicit stand action would.
func (t *Table) autoStand(now time.Time) {
	if t.CurrentSeatIdx >= 0 && t.CurrentSeatIdx < len(t.Seats) {
		if seat := t.Seats[t.CurrentSeatIdx]; seat != nil {
			if hand := seat.ActiveHand(); hand != nil {
				hand.Finished = true
			}
		}
	}
	t.advanceTurn(now)
	t.LastUpdate = now
}
