package card

import (
	"fmt"
	"slices"
)

// Contains 判断 cards 中是否有 c
func Contains(cards []Card, c Card) bool {
	return slices.Contains(cards, c)
}

// ContainsAll 判断 hand 是否包含 cards 中的每一张牌
func ContainsAll(hand, cards []Card) bool {
	for _, c := range cards {
		if !Contains(hand, c) {
			return false
		}
	}
	return true
}

// HasDuplicates 判断是否有重复的牌
func HasDuplicates(cards []Card) bool {
	seen := make(map[Card]struct{}, len(cards))
	for _, c := range cards {
		if _, ok := seen[c]; ok {
			return true
		}
		seen[c] = struct{}{}
	}
	return false
}

// Remove 返回移除 cards 之后的新手牌，不修改 hand
func Remove(hand, cards []Card) []Card {
	result := make([]Card, 0, len(hand))
	for _, c := range hand {
		if !Contains(cards, c) {
			result = append(result, c)
		}
	}
	return result
}

// FindCardsInHand 从手牌中根据输入字符串找出对应的牌
func FindCardsInHand(hand []Card, input string) ([]Card, error) {
	cards, err := ParseCards(input)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	for _, c := range cards {
		if !Contains(hand, c) {
			return nil, fmt.Errorf("你没有 %s", c.Label())
		}
	}
	if HasDuplicates(cards) {
		return nil, fmt.Errorf("输入中有重复的牌")
	}
	return cards, nil
}
