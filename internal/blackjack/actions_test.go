package blackjack

import (
	"context"
	"errors"
	"testing"

	"github.com/Silexemple/satoshi-casino21/internal/game"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	balances   map[uuid.UUID]int64
	debits     int
	credits    int
	failCredit bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[uuid.UUID]int64)}
}

func (f *fakeLedger) GetBalance(_ context.Context, playerID uuid.UUID) (int64, error) {
	return f.balances[playerID], nil
}

func (f *fakeLedger) Debit(_ context.Context, playerID uuid.UUID, amount int64, _ string) error {
	f.balances[playerID] -= amount
	f.debits++
	return nil
}

func (f *fakeLedger) Credit(_ context.Context, playerID uuid.UUID, amount int64, _ string) error {
	if f.failCredit {
		return errors.New("ledger unavailable")
	}
	f.balances[playerID] += amount
	f.credits++
	return nil
}

type fakeBankroll struct {
	amount int64
}

func (f *fakeBankroll) Available(_ context.Context) (int64, error) {
	return f.amount, nil
}

func newTestProcessor(bankroll int64) (*Processor, *fakeLedger) {
	l := newFakeLedger()
	return NewProcessor(l, &fakeBankroll{amount: bankroll}), l
}

func TestBetOpensBettingWindow(t *testing.T) {
	p, l := newTestProcessor(500_000)
	table := testTable()
	alice := seatedPlayer(table, 0, "alice")
	seatedPlayer(table, 1, "bob")
	l.balances[alice] = 10_000

	err := p.Apply(context.Background(), table, alice, Bet{Amount: 500}, testNow)

	require.NoError(t, err)
	assert.Equal(t, StatusBetting, table.Status)
	assert.Equal(t, 1, table.RoundNumber)
	assert.Equal(t, int64(500), table.Seats[0].Wager)
	assert.Equal(t, int64(9_500), l.balances[alice])
	require.NotNil(t, table.BettingStartedAt)
	assert.Equal(t, testNow, *table.BettingStartedAt)
}

func TestBetStartsRoundWhenAllSeatsWagered(t *testing.T) {
	p, l := newTestProcessor(500_000)
	table := testTable()
	alice := seatedPlayer(table, 0, "alice")
	l.balances[alice] = 10_000

	err := p.Apply(context.Background(), table, alice, Bet{Amount: 500}, testNow)

	require.NoError(t, err)
	// The only occupied seat has wagered, so the round deals immediately.
	assert.Contains(t, []Status{StatusPlaying, StatusFinished}, table.Status)
	require.Len(t, table.Seats[0].Hands, 1)
	assert.Len(t, table.Seats[0].Hands[0].Cards, 2)
}

func TestBetRejections(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		balance    int64
		bankroll   int64
		seated     bool
		wantReason Reason
	}{
		{name: "Below table minimum", amount: 50, balance: 10_000, bankroll: 500_000, seated: true, wantReason: ReasonInvalidWager},
		{name: "Above table maximum", amount: 2_000, balance: 10_000, bankroll: 500_000, seated: true, wantReason: ReasonInvalidWager},
		{name: "Insufficient balance", amount: 500, balance: 100, bankroll: 500_000, seated: true, wantReason: ReasonInsufficientFunds},
		{name: "Bankroll cannot cover exposure", amount: 500, balance: 10_000, bankroll: 700, seated: true, wantReason: ReasonBankrollExceeded},
		{name: "Not seated", amount: 500, balance: 10_000, bankroll: 500_000, seated: false, wantReason: ReasonNotSeated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l := newTestProcessor(tt.bankroll)
			table := testTable()
			player := uuid.New()
			if tt.seated {
				player = seatedPlayer(table, 0, "alice")
			}
			l.balances[player] = tt.balance

			err := p.Apply(context.Background(), table, player, Bet{Amount: tt.amount}, testNow)

			re, ok := AsRuleError(err)
			require.True(t, ok, "expected a rule error, got %v", err)
			assert.Equal(t, tt.wantReason, re.Reason)
			assert.Equal(t, tt.balance, l.balances[player], "rejection must not move chips")
			assert.Equal(t, StatusWaiting, table.Status)
		})
	}
}

func TestBetHintsMaxAcceptableWager(t *testing.T) {
	// 8x exposure against a 4000 sat bankroll caps the wager at 500.
	p, l := newTestProcessor(4_000)
	table := testTable()
	alice := seatedPlayer(table, 0, "alice")
	seatedPlayer(table, 1, "bob")
	l.balances[alice] = 10_000

	err := p.Apply(context.Background(), table, alice, Bet{Amount: 1_000}, testNow)

	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBankrollExceeded, re.Reason)
	assert.Contains(t, re.Message, "500")
}

func TestBetRejectsDoubleWager(t *testing.T) {
	p, l := newTestProcessor(500_000)
	table := testTable()
	alice := seatedPlayer(table, 0, "alice")
	seatedPlayer(table, 1, "bob")
	l.balances[alice] = 10_000

	require.NoError(t, p.Apply(context.Background(), table, alice, Bet{Amount: 500}, testNow))
	err := p.Apply(context.Background(), table, alice, Bet{Amount: 500}, testNow)

	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonAlreadyWagered, re.Reason)
}

// playingTable builds a mid-round table with the given seats already dealt.
func playingTable() *Table {
	table := testTable()
	table.Status = StatusPlaying
	table.RoundNumber = 1
	now := testNow
	table.TurnStartedAt = &now
	table.LastUpdate = testNow
	return table
}

func TestTurnOrderSkipsEmptyAndFinishedSeats(t *testing.T) {
	p, _ := newTestProcessor(500_000)
	table := playingTable()
	alice := wageredSeat(table, 0, 500, "10", "7")
	carol := wageredSeat(table, 2, 500, "9", "8")
	table.DealerHand = tcs("10", "9")
	table.Shoe = shoeOf("2", "2", "2")
	table.CurrentSeatIdx = 0

	require.NoError(t, p.Apply(context.Background(), table, alice, Stand{}, testNow))
	assert.Equal(t, 2, table.CurrentSeatIdx, "seat 1 is empty and must be skipped")

	require.NoError(t, p.Apply(context.Background(), table, carol, Stand{}, testNow))
	assert.Equal(t, StatusFinished, table.Status, "round settles once the last seat stands")
}

func TestActRejectsOutOfTurn(t *testing.T) {
	p, _ := newTestProcessor(500_000)
	table := playingTable()
	wageredSeat(table, 0, 500, "10", "7")
	carol := wageredSeat(table, 2, 500, "9", "8")
	table.DealerHand = tcs("10", "9")
	table.CurrentSeatIdx = 0

	err := p.Apply(context.Background(), table, carol, Hit{}, testNow)

	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotYourTurn, re.Reason)
}

func TestHit(t *testing.T) {
	t.Run("Bust advances and settles", func(t *testing.T) {
		p, _ := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("10", "9")
		table.Shoe = shoeOf("K")
		table.CurrentSeatIdx = 0

		require.NoError(t, p.Apply(context.Background(), table, alice, Hit{}, testNow))

		assert.Equal(t, ResultBust, table.Seats[0].Hands[0].Result)
		assert.Equal(t, StatusFinished, table.Status)
		assert.Equal(t, int64(-500), table.Seats[0].NetGain)
	})

	t.Run("Under twenty-one keeps the turn", func(t *testing.T) {
		p, _ := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "5", "7")
		table.DealerHand = tcs("10", "9")
		table.Shoe = shoeOf("3")
		table.CurrentSeatIdx = 0

		require.NoError(t, p.Apply(context.Background(), table, alice, Hit{}, testNow))

		assert.Equal(t, StatusPlaying, table.Status)
		assert.Equal(t, 0, table.CurrentSeatIdx)
		assert.False(t, table.Seats[0].Hands[0].Finished)
	})

	t.Run("Twenty-one auto-stands", func(t *testing.T) {
		p, _ := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("10", "9")
		table.Shoe = shoeOf("4")
		table.CurrentSeatIdx = 0

		require.NoError(t, p.Apply(context.Background(), table, alice, Hit{}, testNow))

		assert.True(t, table.Seats[0].Hands[0].Finished)
		assert.Equal(t, StatusFinished, table.Status)
		// 21 beats the dealer's 19.
		assert.Equal(t, ResultWin, table.Seats[0].Hands[0].Result)
	})
}

func TestDouble(t *testing.T) {
	t.Run("Doubles the wager and draws exactly one card", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "5", "6")
		table.DealerHand = tcs("10", "7")
		table.Shoe = shoeOf("10")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		require.NoError(t, p.Apply(context.Background(), table, alice, Double{}, testNow))

		seat := table.Seats[0]
		assert.Equal(t, int64(1_000), seat.Hands[0].Wager)
		assert.Len(t, seat.Hands[0].Cards, 3)
		assert.Equal(t, int64(500), l.balances[alice], "the extra wager is debited")
		assert.Equal(t, StatusFinished, table.Status)
		// 21 vs 17: pays 2000 gross 1000, commission 20.
		assert.Equal(t, int64(1_980), seat.Payout)
		assert.Equal(t, int64(20), seat.Commission)
	})

	t.Run("Rejected on a three-card hand", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "2", "3", "4")
		table.DealerHand = tcs("10", "7")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		err := p.Apply(context.Background(), table, alice, Double{}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
		assert.Equal(t, int64(1_000), l.balances[alice])
	})

	t.Run("Rejected without funds", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "5", "6")
		table.DealerHand = tcs("10", "7")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 100

		err := p.Apply(context.Background(), table, alice, Double{}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInsufficientFunds, re.Reason)
	})
}

func TestSplit(t *testing.T) {
	t.Run("Creates two hands carrying the seat wager", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "8", "8")
		table.DealerHand = tcs("10", "7")
		table.Shoe = shoeOf("2", "3")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		require.NoError(t, p.Apply(context.Background(), table, alice, Split{}, testNow))

		seat := table.Seats[0]
		require.Len(t, seat.Hands, 2)
		assert.Equal(t, []string{"8", "2"}, ranksOf(seat.Hands[0].Cards))
		assert.Equal(t, []string{"8", "3"}, ranksOf(seat.Hands[1].Cards))
		assert.Equal(t, int64(500), seat.Hands[0].Wager)
		assert.Equal(t, int64(500), seat.Hands[1].Wager)
		assert.Equal(t, int64(500), l.balances[alice])
		assert.Equal(t, StatusPlaying, table.Status)
	})

	t.Run("Rejected on a non-pair", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "8", "9")
		table.DealerHand = tcs("10", "7")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		err := p.Apply(context.Background(), table, alice, Split{}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
	})

	t.Run("Rejected past four hands", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "8", "8")
		seat := table.Seats[0]
		seat.Hands = append(seat.Hands,
			Hand{Cards: tcs("8", "5"), Wager: 500, Finished: true},
			Hand{Cards: tcs("8", "6"), Wager: 500, Finished: true},
			Hand{Cards: tcs("8", "7"), Wager: 500, Finished: true},
		)
		table.DealerHand = tcs("10", "7")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 10_000

		err := p.Apply(context.Background(), table, alice, Split{}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
	})
}

func TestInsurance(t *testing.T) {
	t.Run("Declining records the choice without moving chips", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("A", "9")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		require.NoError(t, p.Apply(context.Background(), table, alice, Insurance{Accept: false}, testNow))

		assert.Equal(t, InsuranceDeclined, table.Seats[0].InsuranceResult)
		assert.Equal(t, int64(1_000), l.balances[alice])
	})

	t.Run("Accepting debits half the wager and loses against no natural", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("A", "9")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		require.NoError(t, p.Apply(context.Background(), table, alice, Insurance{Accept: true}, testNow))

		seat := table.Seats[0]
		assert.Equal(t, int64(250), seat.InsuranceWager)
		assert.Equal(t, InsuranceLost, seat.InsuranceResult)
		assert.Equal(t, int64(750), l.balances[alice])
	})

	t.Run("Rejected without a dealer ace up", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("9", "A")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		err := p.Apply(context.Background(), table, alice, Insurance{Accept: true}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
	})

	t.Run("Rejected twice", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("A", "9")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000

		require.NoError(t, p.Apply(context.Background(), table, alice, Insurance{Accept: false}, testNow))
		err := p.Apply(context.Background(), table, alice, Insurance{Accept: true}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
	})

	t.Run("Won result only recorded once the payout moved", func(t *testing.T) {
		p, l := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "7")
		table.DealerHand = tcs("A", "10")
		table.CurrentSeatIdx = 0
		l.balances[alice] = 1_000
		l.failCredit = true

		err := p.Apply(context.Background(), table, alice, Insurance{Accept: true}, testNow)

		require.Error(t, err)
		seat := table.Seats[0]
		assert.Equal(t, InsuranceResult(""), seat.InsuranceResult, "no won state without the chips")

		// The side wager was debited before the credit failed; a retry must
		// not debit again.
		l.failCredit = false
		err = p.Apply(context.Background(), table, alice, Insurance{Accept: true}, testNow)
		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
		assert.Equal(t, 1, l.debits)
	})
}

func TestSurrender(t *testing.T) {
	t.Run("Refunds half through settlement", func(t *testing.T) {
		p, _ := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "6")
		table.DealerHand = tcs("10", "9")
		table.CurrentSeatIdx = 0

		require.NoError(t, p.Apply(context.Background(), table, alice, Surrender{}, testNow))

		seat := table.Seats[0]
		assert.Equal(t, ResultSurrender, seat.Hands[0].Result)
		assert.Equal(t, StatusFinished, table.Status)
		assert.Equal(t, int64(250), seat.Payout)
		assert.Equal(t, int64(-250), seat.NetGain)
	})

	t.Run("Rejected after a hit", func(t *testing.T) {
		p, _ := newTestProcessor(500_000)
		table := playingTable()
		alice := wageredSeat(table, 0, 500, "10", "2", "4")
		table.DealerHand = tcs("10", "9")
		table.CurrentSeatIdx = 0

		err := p.Apply(context.Background(), table, alice, Surrender{}, testNow)

		re, ok := AsRuleError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonInvalidAction, re.Reason)
	})
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction("bet", 500, false)
	require.NoError(t, err)
	assert.Equal(t, Bet{Amount: 500}, action)

	action, err = ParseAction("insurance", 0, true)
	require.NoError(t, err)
	assert.Equal(t, Insurance{Accept: true}, action)

	_, err = ParseAction("fold", 0, false)
	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidAction, re.Reason)
}

func ranksOf(cards []game.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Rank)
	}
	return out
}
