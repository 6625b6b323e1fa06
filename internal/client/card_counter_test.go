package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/daifugo/internal/game/card"
)

func TestCardCounter_FullDeck(t *testing.T) {
	t.Parallel()

	cc := NewCardCounter()
	remaining := cc.Remaining(nil)

	total := 0
	for rank, n := range remaining {
		if rank == 14 {
			assert.Equal(t, 1, n, "joker")
		} else {
			assert.Equal(t, 4, n, "rank %d", rank)
		}
		total += n
	}
	assert.Equal(t, card.DeckSize, total)
}

func TestCardCounter_ObserveAndHand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		observed [][]card.Card
		hand     []card.Card
		rank     int
		want     int
	}{
		{
			name:     "field cards are deducted",
			observed: [][]card.Card{{card.New(card.Spades, 3), card.New(card.Hearts, 3)}},
			rank:     1,
			want:     2,
		},
		{
			name:     "same play observed twice counts once",
			observed: [][]card.Card{{card.New(card.Spades, 3)}, {card.New(card.Spades, 3)}},
			rank:     1,
			want:     3,
		},
		{
			name: "own hand is excluded",
			hand: []card.Card{card.New(card.Clubs, 2), card.New(card.Diamonds, 2)},
			rank: 13,
			want: 2,
		},
		{
			name:     "joker",
			observed: [][]card.Card{{card.NewJoker()}},
			rank:     14,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cc := NewCardCounter()
			for _, cards := range tt.observed {
				cc.Observe(cards)
			}
			assert.Equal(t, tt.want, cc.Remaining(tt.hand)[tt.rank])
		})
	}
}

func TestCardCounter_Reset(t *testing.T) {
	t.Parallel()

	cc := NewCardCounter()
	cc.Observe([]card.Card{card.New(card.Spades, 1)})
	assert.Equal(t, 3, cc.Remaining(nil)[12])

	cc.Reset()
	assert.Equal(t, 4, cc.Remaining(nil)[12])
}
