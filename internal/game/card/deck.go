package card

import (
	"math/rand/v2"
	"slices"
)

// DeckSize 一副牌的张数：52 张花色牌加 1 张王牌
const DeckSize = 53

// Deck 定义一副牌，队首为下一张发出的牌
type Deck []Card

// NewDeck 按固定顺序生成一副牌：花色依次排列，每种花色 1..13，最后是王牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for s := Spades; s < Joker; s++ {
		for n := 1; n <= 13; n++ {
			deck = append(deck, New(s, n))
		}
	}
	return append(deck, NewJoker())
}

func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Pop 取出队首的牌，牌堆为空时返回 false
func (d *Deck) Pop() (Card, bool) {
	if len(*d) == 0 {
		return Card{}, false
	}
	c := (*d)[0]
	*d = (*d)[1:]
	return c, true
}

func (d Deck) Len() int {
	return len(d)
}

// Cards 返回牌堆的副本
func (d Deck) Cards() []Card {
	return slices.Clone(d)
}

// SortBySuit 按花色整理牌堆
func (d Deck) SortBySuit() {
	SortBySuit(d)
}

// SortByNumber 按点数整理牌堆
func (d Deck) SortByNumber() {
	SortByNumber(d)
}
