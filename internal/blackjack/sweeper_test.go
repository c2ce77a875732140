package blackjack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepBettingTimeout(t *testing.T) {
	t.Run("Starts the round when anyone wagered", func(t *testing.T) {
		table := testTable()
		table.Status = StatusBetting
		table.RoundNumber = 1
		started := testNow.Add(-21 * time.Second)
		table.BettingStartedAt = &started
		seatedPlayer(table, 0, "alice")
		table.Seats[0].Wager = 500
		table.Seats[0].Finished = false
		seatedPlayer(table, 1, "bob")

		changed := table.Sweep(testNow)

		assert.True(t, changed)
		// Bob never wagered, so the round deals to Alice alone.
		assert.Nil(t, table.Seats[1].Hands)
		require.Len(t, table.Seats[0].Hands, 1)
		assert.Contains(t, []Status{StatusPlaying, StatusFinished}, table.Status)
	})

	t.Run("Returns to waiting when nobody wagered", func(t *testing.T) {
		table := testTable()
		table.Status = StatusBetting
		started := testNow.Add(-21 * time.Second)
		table.BettingStartedAt = &started
		seatedPlayer(table, 0, "alice")

		changed := table.Sweep(testNow)

		assert.True(t, changed)
		assert.Equal(t, StatusWaiting, table.Status)
		assert.Nil(t, table.BettingStartedAt)
	})

	t.Run("No change inside the window", func(t *testing.T) {
		table := testTable()
		table.Status = StatusBetting
		started := testNow.Add(-5 * time.Second)
		table.BettingStartedAt = &started
		seatedPlayer(table, 0, "alice")
		table.Seats[0].Wager = 500

		assert.False(t, table.Sweep(testNow))
		assert.Equal(t, StatusBetting, table.Status)
	})
}

func TestSweepTurnTimeoutStandsCurrentHand(t *testing.T) {
	table := testTable()
	table.Status = StatusPlaying
	table.RoundNumber = 1
	table.LastUpdate = testNow.Add(-31 * time.Second)
	started := testNow.Add(-31 * time.Second)
	table.TurnStartedAt = &started
	wageredSeat(table, 0, 500, "10", "7")
	table.DealerHand = tcs("10", "9")
	table.Shoe = shoeOf("2")
	table.CurrentSeatIdx = 0

	changed := table.Sweep(testNow)

	assert.True(t, changed)
	assert.True(t, table.Seats[0].Hands[0].Finished)
	// Standing on 17 against 19 settles as a loss, same as an explicit stand.
	assert.Equal(t, ResultLoss, table.Seats[0].Hands[0].Result)
	assert.Equal(t, StatusFinished, table.Status)
}

func TestSweepStaleGameForceSettles(t *testing.T) {
	table := testTable()
	table.Status = StatusPlaying
	table.RoundNumber = 1
	table.LastUpdate = testNow.Add(-6 * time.Minute)
	wageredSeat(table, 0, 500, "10", "7")
	wageredSeat(table, 2, 500, "5", "5")
	table.DealerHand = tcs("10", "9")
	table.Shoe = shoeOf("2")
	table.CurrentSeatIdx = 0

	changed := table.Sweep(testNow)

	assert.True(t, changed)
	assert.Equal(t, StatusFinished, table.Status)
	assert.True(t, table.Seats[0].Finished)
	assert.True(t, table.Seats[2].Finished)
	// Both hands stood where they were: 17 and 10 both lose to 19.
	assert.Equal(t, ResultLoss, table.Seats[0].Hands[0].Result)
	assert.Equal(t, ResultLoss, table.Seats[2].Hands[0].Result)
}

func TestSweepFinishedResetsForNextRound(t *testing.T) {
	table := testTable()
	table.Status = StatusFinished
	table.RoundNumber = 3
	table.LastUpdate = testNow.Add(-11 * time.Second)
	alice := wageredSeat(table, 0, 500, "10", "7")
	table.Seats[0].Payout = 990
	table.Seats[0].Credited = true
	table.DealerHand = tcs("10", "9")

	changed := table.Sweep(testNow)

	assert.True(t, changed)
	assert.Equal(t, StatusWaiting, table.Status)
	assert.Equal(t, 3, table.RoundNumber, "the round counter survives the reset")
	require.NotNil(t, table.Seats[0], "occupants stay seated")
	assert.Equal(t, alice, table.Seats[0].PlayerID)
	assert.Zero(t, table.Seats[0].Wager)
	assert.Nil(t, table.Seats[0].Hands)
	assert.Zero(t, table.Seats[0].Payout)
	assert.Nil(t, table.DealerHand)
}

func TestSweepFinishedHoldsUntilPayoutsDistributed(t *testing.T) {
	table := testTable()
	table.Status = StatusFinished
	table.RoundNumber = 3
	table.LastUpdate = testNow.Add(-11 * time.Second)
	wageredSeat(table, 0, 500, "10", "7")
	table.Seats[0].Payout = 990
	table.DealerHand = tcs("10", "9")

	// A winning seat whose chips have not moved pins the table in finished,
	// no matter how long ago the round settled.
	assert.False(t, table.Sweep(testNow))
	assert.False(t, table.Sweep(testNow.Add(time.Hour)))
	assert.Equal(t, StatusFinished, table.Status)
	assert.Equal(t, int64(990), table.Seats[0].Payout)

	table.Seats[0].Credited = true

	assert.True(t, table.Sweep(testNow.Add(time.Hour)))
	assert.Equal(t, StatusWaiting, table.Status)
}

func TestSweepFinishedWithinGracePeriod(t *testing.T) {
	table := testTable()
	table.Status = StatusFinished
	table.LastUpdate = testNow.Add(-5 * time.Second)

	assert.False(t, table.Sweep(testNow))
	assert.Equal(t, StatusFinished, table.Status)
}

func TestSweepIdleWaitingTable(t *testing.T) {
	table := testTable()
	table.LastUpdate = testNow.Add(-1 * time.Hour)

	assert.False(t, table.Sweep(testNow), "a waiting table has nothing to sweep")
}
