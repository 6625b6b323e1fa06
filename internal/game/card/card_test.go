package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		number int
		rank   int
	}{
		{3, 1},
		{4, 2},
		{10, 8},
		{11, 9},
		{13, 11},
		{1, 12},
		{2, 13},
		{JokerNumber, 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.rank, RankOf(tt.number), "number %d", tt.number)
	}
}

func TestNew_JokerNumberIsNormalized(t *testing.T) {
	t.Parallel()

	j := New(Joker, 3)
	assert.Equal(t, JokerNumber, j.Number)
	assert.Equal(t, NewJoker(), j)
	assert.Equal(t, 14, j.Rank())
	assert.True(t, j.Valid())
}

func TestCard_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, New(Spades, 1).Valid())
	assert.True(t, New(Clubs, 13).Valid())
	assert.False(t, Card{Suit: Spades, Number: 0}.Valid())
	assert.False(t, Card{Suit: Hearts, Number: 14}.Valid())
	assert.False(t, Card{Suit: Joker, Number: 5}.Valid())
	assert.False(t, Card{Suit: Suit(9), Number: 5}.Valid())
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Card
		hasError bool
	}{
		{input: "S3", expected: New(Spades, 3)},
		{input: "h10", expected: New(Hearts, 10)},
		{input: "HT", expected: New(Hearts, 10)},
		{input: "DQ", expected: New(Diamonds, 12)},
		{input: "ca", expected: New(Clubs, 1)},
		{input: "JK", expected: NewJoker()},
		{input: "joker", expected: NewJoker()},
		{input: "S", hasError: true},
		{input: "X3", hasError: true},
		{input: "S14", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range NewDeck() {
		parsed, err := Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "S3 H10 DQ JK", Format([]Card{New(Spades, 3), New(Hearts, 10), New(Diamonds, 12), NewJoker()}))
}

func TestSortByRank(t *testing.T) {
	t.Parallel()

	cards := []Card{NewJoker(), New(Spades, 2), New(Hearts, 3), New(Spades, 1), New(Spades, 3)}
	SortByRank(cards)

	assert.Equal(t, []Card{New(Spades, 3), New(Hearts, 3), New(Spades, 1), New(Spades, 2), NewJoker()}, cards)
}

func TestSortByNumberAndSuit(t *testing.T) {
	t.Parallel()

	cards := []Card{New(Clubs, 2), New(Spades, 5), New(Hearts, 2)}

	byNumber := append([]Card(nil), cards...)
	SortByNumber(byNumber)
	assert.Equal(t, []Card{New(Hearts, 2), New(Clubs, 2), New(Spades, 5)}, byNumber)

	bySuit := append([]Card(nil), cards...)
	SortBySuit(bySuit)
	assert.Equal(t, []Card{New(Spades, 5), New(Hearts, 2), New(Clubs, 2)}, bySuit)
}
