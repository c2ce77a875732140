package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Suits and Ranks define the standard 52-card deck layout.
var (
	Suits = []string{"♠", "♥", "♦", "♣"}
	Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// Card is a single playing card. Value is the blackjack value: ace counts 11,
// face cards 10, everything else its rank.
type Card struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
}

// Shoe is an ordered draw pile. Cards are drawn from the tail.
type Shoe []Card

// NewShoe builds deckCount standard decks and shuffles them with a
// crypto/rand Fisher-Yates. Wager outcomes depend on the draw order, so a
// seedable PRNG is not acceptable here.
func NewShoe(deckCount int) Shoe {
	shoe := make(Shoe, 0, 52*deckCount)
	for d := 0; d < deckCount; d++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				shoe = append(shoe, Card{Suit: suit, Rank: rank, Value: rankValue(rank)})
			}
		}
	}
	for i := len(shoe) - 1; i > 0; i-- {
		j := cryptoIntn(i + 1)
		shoe[i], shoe[j] = shoe[j], shoe[i]
	}
	return shoe
}

// Draw removes and returns the tail card. An exhausted shoe gets an emergency
// fresh single-deck shuffle; a committed multi-seat round never hits this
// because the shoe is sized to outlast one round.
func (s *Shoe) Draw() Card {
	if len(*s) == 0 {
		*s = NewShoe(1)
	}
	card := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return card
}

// Score sums card values, counting aces as 1 instead of 11 as needed to get
// at or under 21. The result can still exceed 21 (bust).
func Score(cards []Card) int {
	score := 0
	aces := 0
	for _, c := range cards {
		score += c.Value
		if c.Rank == "A" {
			aces++
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// IsNatural reports whether the hand is a two-card 21.
func IsNatural(cards []Card) bool {
	return len(cards) == 2 && Score(cards) == 21
}

// IsSplittable reports whether the hand is a two-card pair of the same rank.
func IsSplittable(cards []Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

func rankValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		v := 0
		fmt.Sscanf(rank, "%d", &v)
		return v
	}
}

func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand never fails on supported platforms; dealing from a
		// predictable shoe is worse than crashing.
		panic(fmt.Sprintf("game: crypto random source unavailable: %v", err))
	}
	return int(v.Int64())
}
