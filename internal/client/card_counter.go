package client

import "github.com/palemoky/daifugo/internal/game/card"

// CardCounter 记牌器：统计除自己手牌和已出现在场上的牌以外，还剩多少张
type CardCounter struct {
	seen map[card.Card]bool
}

// NewCardCounter 创建记牌器
func NewCardCounter() *CardCounter {
	return &CardCounter{seen: make(map[card.Card]bool)}
}

// Reset 新一局开始时清空
func (cc *CardCounter) Reset() {
	clear(cc.seen)
}

// Observe 记录场上出现过的牌，重复记录不影响结果
func (cc *CardCounter) Observe(cards []card.Card) {
	for _, c := range cards {
		cc.seen[c] = true
	}
}

// Remaining 按牌力统计未出现的牌数（牌力 1..14），不含 hand 中的牌
func (cc *CardCounter) Remaining(hand []card.Card) map[int]int {
	remaining := make(map[int]int)
	for _, c := range card.NewDeck().Cards() {
		if cc.seen[c] || card.Contains(hand, c) {
			continue
		}
		remaining[c.Rank()]++
	}
	return remaining
}
