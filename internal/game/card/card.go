package card

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Suit 定义花色
type Suit int

const (
	Spades   Suit = iota // 黑桃
	Hearts               // 红心
	Diamonds             // 方块
	Clubs                // 梅花
	Joker                // 王牌
)

// JokerNumber 王牌固定的点数
const JokerNumber = 14

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Joker:    "🃏",
}

// suitLetters 花色字母，用于文本记法
var suitLetters = map[Suit]string{
	Spades:   "S",
	Hearts:   "H",
	Diamonds: "D",
	Clubs:    "C",
	Joker:    "J",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Valid 判断花色是否合法
func (s Suit) Valid() bool {
	return s >= Spades && s <= Joker
}

// numberNames 点数显示名
var numberNames = map[int]string{
	1:  "A",
	11: "J",
	12: "Q",
	13: "K",
}

// Card 定义一张牌。Number 取值 1..13，王牌固定为 14
type Card struct {
	Suit   Suit `json:"suit"`
	Number int  `json:"number"`
}

// New 创建一张牌，王牌的点数统一为 JokerNumber
func New(suit Suit, number int) Card {
	if suit == Joker {
		number = JokerNumber
	}
	return Card{Suit: suit, Number: number}
}

// NewJoker 创建王牌
func NewJoker() Card {
	return Card{Suit: Joker, Number: JokerNumber}
}

// IsJoker 是否为王牌
func (c Card) IsJoker() bool {
	return c.Suit == Joker
}

// Valid 判断牌是否合法
func (c Card) Valid() bool {
	if c.Suit == Joker {
		return c.Number == JokerNumber
	}
	return c.Suit.Valid() && c.Number >= 1 && c.Number <= 13
}

// Rank 返回牌力：3 最弱为 1，A 为 12，2 为 13，王牌为 14
func (c Card) Rank() int {
	return RankOf(c.Number)
}

// RankOf 点数到牌力的换算
func RankOf(number int) int {
	if number > 13 {
		return 14
	}
	r := number - 2
	if r <= 0 {
		r += 13
	}
	return r
}

func (c Card) numberName() string {
	if name, ok := numberNames[c.Number]; ok {
		return name
	}
	return strconv.Itoa(c.Number)
}

// String 返回文本记法，例如 S3、H10、DQ、JK
func (c Card) String() string {
	if c.IsJoker() {
		return "JK"
	}
	return suitLetters[c.Suit] + c.numberName()
}

// Label 返回带花色符号的显示文本
func (c Card) Label() string {
	if c.IsJoker() {
		return suitSymbols[Joker]
	}
	return c.Suit.String() + c.numberName()
}

// CompareByRank 先比牌力，牌力相同比花色
func CompareByRank(a, b Card) int {
	return cmp.Or(cmp.Compare(a.Rank(), b.Rank()), cmp.Compare(a.Suit, b.Suit))
}

// CompareByNumber 先比点数，点数相同比花色
func CompareByNumber(a, b Card) int {
	return cmp.Or(cmp.Compare(a.Number, b.Number), cmp.Compare(a.Suit, b.Suit))
}

// CompareBySuit 先比花色，花色相同比点数
func CompareBySuit(a, b Card) int {
	return cmp.Or(cmp.Compare(a.Suit, b.Suit), cmp.Compare(a.Number, b.Number))
}

// SortByRank 按牌力从小到大排序（原地）
func SortByRank(cards []Card) {
	slices.SortFunc(cards, CompareByRank)
}

// SortByNumber 按点数排序（原地）
func SortByNumber(cards []Card) {
	slices.SortFunc(cards, CompareByNumber)
}

// SortBySuit 按花色排序（原地）
func SortBySuit(cards []Card) {
	slices.SortFunc(cards, CompareBySuit)
}

// charToSuit 用于快速查找字符对应的花色
var charToSuit = map[byte]Suit{
	'S': Spades,
	'H': Hearts,
	'D': Diamonds,
	'C': Clubs,
}

// nameToNumber 点数名到点数
var nameToNumber = map[string]int{
	"A": 1, "1": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7,
	"8": 8, "9": 9, "10": 10, "T": 10, "J": 11, "Q": 12, "K": 13,
}

// Parse 解析文本记法的单张牌，大小写不敏感
func Parse(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "JK" || s == "JOKER" {
		return NewJoker(), nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("无法识别的牌: %q", s)
	}
	suit, ok := charToSuit[s[0]]
	if !ok {
		return Card{}, fmt.Errorf("无法识别的花色: %c", s[0])
	}
	number, ok := nameToNumber[s[1:]]
	if !ok {
		return Card{}, fmt.Errorf("无法识别的点数: %s", s[1:])
	}
	return New(suit, number), nil
}

// ParseCards 解析以空格或逗号分隔的多张牌
func ParseCards(input string) ([]Card, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Format 将多张牌格式化为文本记法
func Format(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
